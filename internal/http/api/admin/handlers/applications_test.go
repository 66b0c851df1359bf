package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dbpkg "github.com/lanternfest/portal/internal/db"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

var adminTestSeq int

func openAdminTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	adminTestSeq++
	conn, errOpen := dbpkg.Open(fmt.Sprintf("file:admin_handlers_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), adminTestSeq))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func adminContext(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func seedApplication(t *testing.T, conn *gorm.DB, status string) models.Application {
	t.Helper()
	application := models.Application{
		AccountID:     7,
		ApplicantName: "Test Applicant",
		Category:      models.CategoryOpen,
		Status:        status,
	}
	if errCreate := conn.Create(&application).Error; errCreate != nil {
		t.Fatalf("create application: %v", errCreate)
	}
	return application
}

func TestScoreMovesSubmittedApplicationToScored(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewApplicationAdminHandler(conn, nil)
	application := seedApplication(t, conn, models.ApplicationStatusSubmitted)

	w, c := adminContext(t, http.MethodPost, "/v0/admin/applications/1/score", map[string]any{"score": 82, "notes": "strong entry"})
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", application.ID)}}
	h.Score(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", w.Code, w.Body.String())
	}

	var stored models.Application
	if errFind := conn.First(&stored, application.ID).Error; errFind != nil {
		t.Fatalf("find application: %v", errFind)
	}
	if stored.Status != models.ApplicationStatusScored {
		t.Fatalf("status = %q, want scored", stored.Status)
	}
	if stored.Score == nil || *stored.Score != 82 {
		t.Fatalf("score = %v, want 82", stored.Score)
	}
}

func TestScoreRejectsOutOfRangeValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewApplicationAdminHandler(conn, nil)
	application := seedApplication(t, conn, models.ApplicationStatusSubmitted)

	w, c := adminContext(t, http.MethodPost, "/v0/admin/applications/1/score", map[string]any{"score": 180})
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", application.ID)}}
	h.Score(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestApproveDoesNotRegressDecisionOnLaterScore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewApplicationAdminHandler(conn, nil)
	application := seedApplication(t, conn, models.ApplicationStatusSubmitted)

	w, c := adminContext(t, http.MethodPost, "/v0/admin/applications/1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", application.ID)}}
	h.Approve(c)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: %d body=%s", w.Code, w.Body.String())
	}

	w2, c2 := adminContext(t, http.MethodPost, "/v0/admin/applications/1/score", map[string]any{"score": 40})
	c2.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", application.ID)}}
	h.Score(c2)
	if w2.Code != http.StatusOK {
		t.Fatalf("score: %d body=%s", w2.Code, w2.Body.String())
	}

	var stored models.Application
	if errFind := conn.First(&stored, application.ID).Error; errFind != nil {
		t.Fatalf("find application: %v", errFind)
	}
	if stored.Status != models.ApplicationStatusApproved {
		t.Fatalf("a later score must not regress an approved decision, status = %q", stored.Status)
	}
}

func TestListFiltersByStatusAndFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewApplicationAdminHandler(conn, nil)
	seedApplication(t, conn, models.ApplicationStatusSubmitted)
	approved := seedApplication(t, conn, models.ApplicationStatusApproved)
	if errFlag := conn.Model(&models.Application{}).Where("id = ?", approved.ID).Update("flagged", true).Error; errFlag != nil {
		t.Fatalf("flag application: %v", errFlag)
	}

	w, c := adminContext(t, http.MethodGet, "/v0/admin/applications?status=approved&flagged=true", nil)
	h.List(c)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Applications []struct {
			ID uint64 `json:"id"`
		} `json:"applications"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode response: %v", errDecode)
	}
	if len(resp.Applications) != 1 || resp.Applications[0].ID != approved.ID {
		t.Fatalf("filtered list = %+v, want only id %d", resp.Applications, approved.ID)
	}
}

func TestDeleteRemovesApplication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openAdminTestDB(t)
	h := NewApplicationAdminHandler(conn, nil)
	application := seedApplication(t, conn, models.ApplicationStatusRejected)

	w, c := adminContext(t, http.MethodDelete, "/v0/admin/applications/1", nil)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", application.ID)}}
	h.Delete(c)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	conn.Model(&models.Application{}).Where("id = ?", application.ID).Count(&count)
	if count != 0 {
		t.Fatalf("application still present after delete")
	}
}
