package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// youthMaxAge bounds the youth submission track.
const youthMaxAge = 18

// ApplicationHandler handles participant application submissions.
type ApplicationHandler struct {
	db *gorm.DB
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(db *gorm.DB) *ApplicationHandler {
	return &ApplicationHandler{db: db}
}

// submitRequest defines the request body for an application submission.
type submitRequest struct {
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// Submit creates an application for the signed-in account. Youth-track
// submissions additionally require the applicant to be under the age bound
// according to the stored birth date.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	accountID := getAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var body submitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	category := strings.TrimSpace(body.Category)
	if category == "" {
		category = models.CategoryOpen
	}
	if category != models.CategoryYouth && category != models.CategoryOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	var profile models.Profile
	if errFind := h.db.WithContext(c.Request.Context()).First(&profile, "account_id = ?", accountID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if category == models.CategoryYouth {
		age := time.Now().UTC().Year() - profile.BirthDate.Year()
		if profile.BirthDate.IsZero() || age > youthMaxAge {
			c.JSON(http.StatusForbidden, gin.H{"error": "youth track age limit exceeded"})
			return
		}
	}

	application := models.Application{
		AccountID:     accountID,
		ApplicantName: profile.FullName,
		Category:      category,
		Status:        models.ApplicationStatusSubmitted,
		Notes:         strings.TrimSpace(body.Notes),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&application).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create application failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       application.ID,
		"category": application.Category,
		"status":   application.Status,
	})
}

// ListOwn returns the signed-in account's applications, newest first.
func (h *ApplicationHandler) ListOwn(c *gin.Context) {
	accountID := getAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var applications []models.Application
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&applications).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(applications))
	for _, application := range applications {
		items = append(items, gin.H{
			"id":         application.ID,
			"category":   application.Category,
			"status":     application.Status,
			"score":      application.Score,
			"flagged":    application.Flagged,
			"notes":      application.Notes,
			"created_at": application.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"applications": items})
}
