package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// ExportHandler serves report export endpoints.
type ExportHandler struct {
	db *gorm.DB
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// Applications streams every application as CSV.
func (h *ExportHandler) Applications(c *gin.Context) {
	var applications []models.Application
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&applications).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="applications.csv"`)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"id", "account_id", "applicant_name", "category", "status", "score", "flagged", "created_at"})
	for _, application := range applications {
		score := ""
		if application.Score != nil {
			score = strconv.Itoa(*application.Score)
		}
		_ = writer.Write([]string{
			fmt.Sprintf("%d", application.ID),
			fmt.Sprintf("%d", application.AccountID),
			application.ApplicantName,
			application.Category,
			application.Status,
			score,
			strconv.FormatBool(application.Flagged),
			application.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writer.Flush()
}
