package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/audit"
	portalhttp "github.com/lanternfest/portal/internal/http"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// ApplicationAdminHandler serves the application review endpoints.
type ApplicationAdminHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

// NewApplicationAdminHandler constructs an ApplicationAdminHandler.
func NewApplicationAdminHandler(db *gorm.DB, recorder *audit.Recorder) *ApplicationAdminHandler {
	return &ApplicationAdminHandler{db: db, recorder: recorder}
}

// List returns applications, newest first, optionally filtered by status,
// category, or the flagged marker.
func (h *ApplicationAdminHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Application{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}
	if flagged := strings.TrimSpace(c.Query("flagged")); flagged != "" {
		query = query.Where("flagged = ?", flagged == "true")
	}

	var applications []models.Application
	if errFind := query.Order("created_at DESC").Find(&applications).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(applications))
	for _, application := range applications {
		items = append(items, applicationJSON(application))
	}
	c.JSON(http.StatusOK, gin.H{"applications": items})
}

// Get returns one application by ID.
func (h *ApplicationAdminHandler) Get(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, applicationJSON(application))
}

// scoreRequest defines the request body for scoring an application.
type scoreRequest struct {
	Score int    `json:"score"`
	Notes string `json:"notes"`
}

// Score records a review score and moves the application to scored unless
// a decision already exists.
func (h *ApplicationAdminHandler) Score(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}

	var body scoreRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Score < 0 || body.Score > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score out of range"})
		return
	}

	fields := map[string]any{"score": body.Score}
	if notes := strings.TrimSpace(body.Notes); notes != "" {
		fields["notes"] = notes
	}
	if application.Status == models.ApplicationStatusSubmitted {
		fields["status"] = models.ApplicationStatusScored
	}
	h.apply(c, application, fields)
}

// Approve marks an application approved.
func (h *ApplicationAdminHandler) Approve(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}
	h.apply(c, application, map[string]any{"status": models.ApplicationStatusApproved})
}

// Reject marks an application rejected.
func (h *ApplicationAdminHandler) Reject(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}
	h.apply(c, application, map[string]any{"status": models.ApplicationStatusRejected})
}

// flagRequest defines the request body for flagging an application.
type flagRequest struct {
	Flagged bool   `json:"flagged"`
	Notes   string `json:"notes"`
}

// Flag toggles the follow-up marker on an application.
func (h *ApplicationAdminHandler) Flag(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}

	var body flagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	fields := map[string]any{"flagged": body.Flagged}
	if notes := strings.TrimSpace(body.Notes); notes != "" {
		fields["notes"] = notes
	}
	h.apply(c, application, fields)
}

// updateApplicationRequest defines the editable application fields.
type updateApplicationRequest struct {
	ApplicantName string `json:"applicant_name"`
	Category      string `json:"category"`
	Notes         string `json:"notes"`
}

// Update edits application fields.
func (h *ApplicationAdminHandler) Update(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}

	var body updateApplicationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	fields := map[string]any{}
	if name := strings.TrimSpace(body.ApplicantName); name != "" {
		fields["applicant_name"] = name
	}
	if category := strings.TrimSpace(body.Category); category != "" {
		if category != models.CategoryYouth && category != models.CategoryOpen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		fields["category"] = category
	}
	if notes := strings.TrimSpace(body.Notes); notes != "" {
		fields["notes"] = notes
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	h.apply(c, application, fields)
}

// Delete removes an application.
func (h *ApplicationAdminHandler) Delete(c *gin.Context) {
	application, ok := h.find(c)
	if !ok {
		return
	}

	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&application).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// find loads the application addressed by the :id route parameter. On
// failure the error response is already written.
func (h *ApplicationAdminHandler) find(c *gin.Context) (models.Application, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return models.Application{}, false
	}

	var application models.Application
	if errFind := h.db.WithContext(c.Request.Context()).First(&application, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return models.Application{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return models.Application{}, false
	}
	return application, true
}

// apply writes the field updates, records the review action, and returns
// the refreshed application.
func (h *ApplicationAdminHandler) apply(c *gin.Context, application models.Application, fields map[string]any) {
	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.Application{}).
		Where("id = ?", application.ID).
		Updates(fields).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	if h.recorder != nil {
		if actorID, ok := portalhttp.AccountIDFromContext(c); ok {
			id := actorID
			detail := map[string]any{"application_id": application.ID}
			for key, value := range fields {
				detail[key] = value
			}
			h.recorder.Record(models.AuditReview, &id, detail)
		}
	}

	var refreshed models.Application
	if errFind := h.db.WithContext(c.Request.Context()).First(&refreshed, application.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, applicationJSON(refreshed))
}

// applicationJSON serializes one application for review responses.
func applicationJSON(application models.Application) gin.H {
	return gin.H{
		"id":             application.ID,
		"account_id":     application.AccountID,
		"applicant_name": application.ApplicantName,
		"category":       application.Category,
		"status":         application.Status,
		"score":          application.Score,
		"flagged":        application.Flagged,
		"notes":          application.Notes,
		"created_at":     application.CreatedAt,
		"updated_at":     application.UpdatedAt,
	}
}
