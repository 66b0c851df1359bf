package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lanternfest/portal/internal/models"
)

func TestSetRolePrivilegedMarksProfileCompleteAndSeedsDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewUserAdminHandler(conn)

	account := models.Account{Email: "promote@example.org", Password: "x", Active: true}
	if errCreate := conn.Create(&account).Error; errCreate != nil {
		t.Fatalf("create account: %v", errCreate)
	}
	profile := models.Profile{AccountID: account.ID, Email: account.Email, Role: models.RoleUser}
	if errCreate := conn.Create(&profile).Error; errCreate != nil {
		t.Fatalf("create profile: %v", errCreate)
	}

	w, c := adminContext(t, http.MethodPut, "/v0/admin/users/1/role", map[string]string{"role": models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", account.ID)}}
	h.SetRole(c)
	if w.Code != http.StatusOK {
		t.Fatalf("set role: %d body=%s", w.Code, w.Body.String())
	}

	var stored models.Profile
	if errFind := conn.First(&stored, "account_id = ?", account.ID).Error; errFind != nil {
		t.Fatalf("find profile: %v", errFind)
	}
	if stored.Role != models.RoleAdmin {
		t.Fatalf("role = %q, want admin", stored.Role)
	}
	if !stored.IsProfileComplete {
		t.Fatalf("privileged grant must mark the profile complete")
	}

	var detail models.AdminDetail
	if errFind := conn.First(&detail, "account_id = ?", account.ID).Error; errFind != nil {
		t.Fatalf("admin detail not seeded: %v", errFind)
	}
	if detail.AdminLevel != models.LevelJunior {
		t.Fatalf("seeded level = %q, want junior", detail.AdminLevel)
	}
}

func TestSetRoleModeratorDoesNotForceCompleteness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewUserAdminHandler(conn)

	account := models.Account{Email: "mod@example.org", Password: "x", Active: true}
	if errCreate := conn.Create(&account).Error; errCreate != nil {
		t.Fatalf("create account: %v", errCreate)
	}
	profile := models.Profile{AccountID: account.ID, Email: account.Email, Role: models.RoleUser}
	if errCreate := conn.Create(&profile).Error; errCreate != nil {
		t.Fatalf("create profile: %v", errCreate)
	}

	w, c := adminContext(t, http.MethodPut, "/v0/admin/users/1/role", map[string]string{"role": models.RoleModerator})
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", account.ID)}}
	h.SetRole(c)
	if w.Code != http.StatusOK {
		t.Fatalf("set role: %d body=%s", w.Code, w.Body.String())
	}

	var stored models.Profile
	if errFind := conn.First(&stored, "account_id = ?", account.ID).Error; errFind != nil {
		t.Fatalf("find profile: %v", errFind)
	}
	if stored.IsProfileComplete {
		t.Fatalf("moderator grant must not force completeness")
	}
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewUserAdminHandler(conn)

	w, c := adminContext(t, http.MethodPut, "/v0/admin/users/1/role", map[string]string{"role": "royalty"})
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.SetRole(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestSetActiveDisablesAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewUserAdminHandler(conn)

	account := models.Account{Email: "disable@example.org", Password: "x", Active: true}
	if errCreate := conn.Create(&account).Error; errCreate != nil {
		t.Fatalf("create account: %v", errCreate)
	}

	w, c := adminContext(t, http.MethodPut, "/v0/admin/users/1/active", map[string]bool{"active": false})
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", account.ID)}}
	h.SetActive(c)
	if w.Code != http.StatusOK {
		t.Fatalf("set active: %d body=%s", w.Code, w.Body.String())
	}

	var stored models.Account
	if errFind := conn.First(&stored, account.ID).Error; errFind != nil {
		t.Fatalf("find account: %v", errFind)
	}
	if stored.Active {
		t.Fatalf("account must be disabled")
	}
}
