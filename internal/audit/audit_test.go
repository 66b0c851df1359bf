package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lanternfest/portal/internal/models"
	"gorm.io/gorm"
)

func openAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(&models.AuditEntry{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestRecorderPersistsEntries(t *testing.T) {
	conn := openAuditTestDB(t)
	recorder := NewRecorder(conn)

	accountID := uint64(7)
	recorder.Record(models.AuditSignIn, &accountID, map[string]any{"email": "lead@example.com"})
	recorder.Record(models.AuditRedirect, &accountID, map[string]any{"target": "#admin/dashboard"})
	recorder.Close()

	var entries []models.AuditEntry
	if errFind := conn.Order("id ASC").Find(&entries).Error; errFind != nil {
		t.Fatalf("find: %v", errFind)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != models.AuditSignIn || entries[1].Kind != models.AuditRedirect {
		t.Fatalf("unexpected kinds: %s %s", entries[0].Kind, entries[1].Kind)
	}
	if entries[0].AccountID == nil || *entries[0].AccountID != 7 {
		t.Fatalf("missing account id")
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	recorder := NewRecorder(openAuditTestDB(t))
	recorder.Close()
	recorder.Close()
}
