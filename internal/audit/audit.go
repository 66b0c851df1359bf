// Package audit persists authentication and authorization events. Writes
// are buffered through a single writer goroutine so recording never blocks
// a request or a state-machine evaluation.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lanternfest/portal/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// writeTimeout bounds each audit insert.
const writeTimeout = 5 * time.Second

// Recorder buffers and persists audit entries.
type Recorder struct {
	db *gorm.DB

	ch        chan models.AuditEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewRecorder constructs a Recorder and starts its writer.
func NewRecorder(db *gorm.DB) *Recorder {
	r := &Recorder{
		db:   db,
		ch:   make(chan models.AuditEntry, 256),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an audit entry. When the buffer is full the entry is
// dropped with a warning; auditing must never stall the caller.
func (r *Recorder) Record(kind string, accountID *uint64, detail map[string]any) {
	raw, errEncode := json.Marshal(detail)
	if errEncode != nil {
		raw = []byte("{}")
	}
	entry := models.AuditEntry{
		AccountID: accountID,
		Kind:      kind,
		Detail:    datatypes.JSON(raw),
		CreatedAt: time.Now().UTC(),
	}
	select {
	case r.ch <- entry:
	default:
		log.Warnf("audit: buffer full, dropping %s entry", kind)
	}
}

// Close stops the writer after draining queued entries.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.ch)
		<-r.done
	})
}

// run drains the queue into the database.
func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if errCreate := r.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
			log.WithError(errCreate).Warnf("audit: persist %s entry", entry.Kind)
		}
		cancel()
	}
}
