package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// AuditHandler serves the audit log endpoints.
type AuditHandler struct {
	db *gorm.DB
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{db: db}
}

// List returns recent audit entries, newest first, optionally filtered by
// kind or acting account.
func (h *AuditHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.AuditEntry{})

	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if accountRaw := strings.TrimSpace(c.Query("account_id")); accountRaw != "" {
		accountID, errParse := strconv.ParseUint(accountRaw, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
			return
		}
		query = query.Where("account_id = ?", accountID)
	}

	limit := 100
	if limitRaw := strings.TrimSpace(c.Query("limit")); limitRaw != "" {
		parsed, errParse := strconv.Atoi(limitRaw)
		if errParse != nil || parsed <= 0 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	var entries []models.AuditEntry
	if errFind := query.Order("id DESC").Limit(limit).Find(&entries).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, gin.H{
			"id":         entry.ID,
			"account_id": entry.AccountID,
			"kind":       entry.Kind,
			"detail":     entry.Detail,
			"created_at": entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": items})
}
