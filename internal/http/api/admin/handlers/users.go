package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

// UserAdminHandler serves account management endpoints.
type UserAdminHandler struct {
	db *gorm.DB
}

// NewUserAdminHandler constructs a UserAdminHandler.
func NewUserAdminHandler(db *gorm.DB) *UserAdminHandler {
	return &UserAdminHandler{db: db}
}

// List returns accounts joined with their profile role.
func (h *UserAdminHandler) List(c *gin.Context) {
	var accounts []models.Account
	if errFind := h.db.WithContext(c.Request.Context()).Order("id ASC").Find(&accounts).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	ids := make([]uint64, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	roleByAccount := make(map[uint64]string, len(accounts))
	completeByAccount := make(map[uint64]bool, len(accounts))
	if len(ids) > 0 {
		var profileRows []models.Profile
		if errProfiles := h.db.WithContext(c.Request.Context()).
			Where("account_id IN ?", ids).
			Find(&profileRows).Error; errProfiles != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		for _, row := range profileRows {
			roleByAccount[row.AccountID] = row.Role
			completeByAccount[row.AccountID] = row.IsProfileComplete
		}
	}

	items := make([]gin.H, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, gin.H{
			"id":                  account.ID,
			"email":               account.Email,
			"display_name":        account.DisplayName,
			"email_verified":      account.EmailVerified,
			"active":              account.Active,
			"role":                roleByAccount[account.ID],
			"is_profile_complete": completeByAccount[account.ID],
			"created_at":          account.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": items})
}

// setRoleRequest defines the request body for a role change.
type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole changes an account's portal role. Granting a privileged role
// marks the profile complete, matching the privileged completeness
// exemption, and granting any reviewing role seeds an admin detail record
// so the capability fetch has something to resolve.
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	var body setRoleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	role := strings.TrimSpace(body.Role)
	switch role {
	case models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin, models.RoleModerator:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	fields := map[string]any{"role": role}
	if models.IsPrivilegedRole(role) {
		fields["is_profile_complete"] = true
	}
	result := h.db.WithContext(c.Request.Context()).
		Model(&models.Profile{}).
		Where("account_id = ?", accountID).
		Updates(fields)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	if models.IsPrivilegedRole(role) || role == models.RoleModerator {
		if errSeed := h.seedAdminDetail(c, accountID, role); errSeed != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "seed admin detail failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "role": role})
}

// seedAdminDetail creates a junior-level detail record when none exists.
func (h *UserAdminHandler) seedAdminDetail(c *gin.Context, accountID uint64, role string) error {
	var existing models.AdminDetail
	errFind := h.db.WithContext(c.Request.Context()).First(&existing, "account_id = ?", accountID).Error
	if errFind == nil {
		return h.db.WithContext(c.Request.Context()).
			Model(&models.AdminDetail{}).
			Where("account_id = ?", accountID).
			Update("role", role).Error
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return errFind
	}
	detail := models.AdminDetail{
		AccountID:  accountID,
		Role:       role,
		AdminLevel: models.LevelJunior,
	}
	return h.db.WithContext(c.Request.Context()).Create(&detail).Error
}

// setActiveRequest defines the request body for an activation change.
type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive enables or disables an account's sign-in.
func (h *UserAdminHandler) SetActive(c *gin.Context) {
	accountID, ok := parseAccountID(c)
	if !ok {
		return
	}

	var body setActiveRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("active", body.Active)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "active": body.Active})
}

// parseAccountID reads the :id route parameter. On failure the error
// response is already written.
func parseAccountID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
