package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/settings"
	"gorm.io/gorm"
)

// SettingsHandler serves the portal settings endpoints.
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// Get returns every stored setting row plus the snapshot timestamp.
func (h *SettingsHandler) Get(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	values := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	c.JSON(http.StatusOK, gin.H{
		"settings":   values,
		"updated_at": settings.DBConfigUpdatedAt(),
	})
}

// putSettingsRequest defines the request body for a settings update.
type putSettingsRequest struct {
	Settings map[string]json.RawMessage `json:"settings"`
}

// Put upserts setting rows and refreshes the in-memory snapshot so new
// values take effect without a restart.
func (h *SettingsHandler) Put(c *gin.Context) {
	var body putSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Settings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings given"})
		return
	}

	for key, value := range body.Settings {
		if strings.TrimSpace(key) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty key"})
			return
		}
		if errUpsert := settings.Upsert(c.Request.Context(), h.db, key, value); errUpsert != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "save setting failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
