package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// DashboardHandler serves festival administration dashboard endpoints.
type DashboardHandler struct {
	db *gorm.DB // Database handle for application analytics.
}

// NewDashboardHandler constructs a dashboard handler with database access.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// kpiResponse defines the KPI response payload.
type kpiResponse struct {
	TotalApplications int64 `json:"total_applications"` // All applications.
	Submitted         int64 `json:"submitted"`          // Awaiting review.
	Scored            int64 `json:"scored"`             // Scored, undecided.
	Approved          int64 `json:"approved"`           // Approved.
	Rejected          int64 `json:"rejected"`           // Rejected.
	Flagged           int64 `json:"flagged"`            // Flagged for follow-up.
	Youth             int64 `json:"youth"`              // Youth-track share.
	Accounts          int64 `json:"accounts"`           // Registered accounts.
}

// KPI returns application pipeline counts for the admin dashboard.
func (h *DashboardHandler) KPI(c *gin.Context) {
	ctx := c.Request.Context()
	var out kpiResponse

	countWhere := func(query string, args ...any) int64 {
		var count int64
		h.db.WithContext(ctx).Model(&models.Application{}).Where(query, args...).Count(&count)
		return count
	}

	h.db.WithContext(ctx).Model(&models.Application{}).Count(&out.TotalApplications)
	out.Submitted = countWhere("status = ?", models.ApplicationStatusSubmitted)
	out.Scored = countWhere("status = ?", models.ApplicationStatusScored)
	out.Approved = countWhere("status = ?", models.ApplicationStatusApproved)
	out.Rejected = countWhere("status = ?", models.ApplicationStatusRejected)
	out.Flagged = countWhere("flagged = ?", true)
	out.Youth = countWhere("category = ?", models.CategoryYouth)
	h.db.WithContext(ctx).Model(&models.Account{}).Count(&out.Accounts)

	c.JSON(http.StatusOK, out)
}
