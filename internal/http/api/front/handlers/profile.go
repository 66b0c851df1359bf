package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/profiles"
	"gorm.io/gorm"
)

// ProfileHandler handles the signed-in account's profile endpoints.
type ProfileHandler struct {
	db  *gorm.DB
	hub *identity.LocalHub
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, hub *identity.LocalHub) *ProfileHandler {
	return &ProfileHandler{db: db, hub: hub}
}

// Get returns the stored profile for the signed-in account.
func (h *ProfileHandler) Get(c *gin.Context) {
	accountID := getAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
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
	c.JSON(http.StatusOK, profileJSON(profile))
}

// updateProfileRequest defines the editable profile fields.
type updateProfileRequest struct {
	FullName      string            `json:"full_name"`
	SecondaryName string            `json:"secondary_name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Nationality   string            `json:"nationality"`
	PhotoURL      string            `json:"photo_url"`
	BirthDate     *models.BirthDate `json:"birth_date"`
}

// Update writes profile fields and recomputes the stored completeness flag
// before the value is persisted, so the stored flag never lags the fields.
func (h *ProfileHandler) Update(c *gin.Context) {
	accountID := getAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
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

	profile.FullName = strings.TrimSpace(body.FullName)
	profile.SecondaryName = strings.TrimSpace(body.SecondaryName)
	profile.Email = strings.ToLower(strings.TrimSpace(body.Email))
	profile.Phone = strings.TrimSpace(body.Phone)
	profile.Nationality = strings.TrimSpace(body.Nationality)
	profile.PhotoURL = strings.TrimSpace(body.PhotoURL)
	if body.BirthDate != nil {
		profile.BirthDate = *body.BirthDate
	}
	profile.IsProfileComplete = profiles.Complete(profile)

	if errSave := h.db.WithContext(c.Request.Context()).Save(&profile).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save profile failed"})
		return
	}

	// Re-push the identity and re-run the profile fetch so the coordinator
	// publishes the new state and the flow controller can route off the
	// fresh completeness flag.
	h.hub.RefreshAccount(c.Request.Context(), accountID)
	if coord := getCoordinator(c); coord != nil {
		coord.Sessions.Refresh()
	}
	c.JSON(http.StatusOK, profileJSON(profile))
}

// profileJSON serializes a stored profile.
func profileJSON(profile models.Profile) gin.H {
	return gin.H{
		"account_id":          profile.AccountID,
		"full_name":           profile.FullName,
		"secondary_name":      profile.SecondaryName,
		"email":               profile.Email,
		"phone":               profile.Phone,
		"nationality":         profile.Nationality,
		"photo_url":           profile.PhotoURL,
		"birth_date":          profile.BirthDate,
		"role":                profile.Role,
		"email_verified":      profile.EmailVerified,
		"is_profile_complete": profile.IsProfileComplete,
	}
}
