package adminrole

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/models"
	"github.com/lanternfest/portal/internal/session"
	"gorm.io/datatypes"
)

// fakeDetails is a map-backed detail store with error injection and an
// optional blocking gate to simulate a slow fetch.
type fakeDetails struct {
	mu      sync.Mutex
	rows    map[uint64]models.AdminDetail
	failGet bool
	gate    chan struct{}
}

func newFakeDetails() *fakeDetails {
	return &fakeDetails{rows: map[uint64]models.AdminDetail{}}
}

func (f *fakeDetails) Get(_ context.Context, accountID uint64) (*models.AdminDetail, error) {
	f.mu.Lock()
	gate := f.gate
	fail := f.failGet
	row, ok := f.rows[accountID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return nil, errors.New("boom")
	}
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func adminSession(role string) session.Snapshot {
	return session.Snapshot{
		Identity: &identity.Identity{ID: 7, Email: "lead@example.com", EmailVerified: true},
		Profile:  &models.Profile{AccountID: 7, Role: role, IsProfileComplete: true},
	}
}

func TestHandleSessionAbsentIdentityClearsRole(t *testing.T) {
	store := New(context.Background(), newFakeDetails())
	store.handleSession(session.Snapshot{})

	snap := store.Snapshot()
	if snap.Privileged || snap.Loading || snap.Admin != nil {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPrivilegedFlagSettlesBeforeDetailFetch(t *testing.T) {
	details := newFakeDetails()
	details.gate = make(chan struct{})
	store := New(context.Background(), details)

	var snapshots []Snapshot
	var mu sync.Mutex
	store.Subscribe(func(snap Snapshot) {
		mu.Lock()
		snapshots = append(snapshots, snap)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		store.handleSession(adminSession(models.RoleAdmin))
		close(done)
	}()

	// While the detail fetch is blocked, privileged must already be true
	// and loading false.
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) >= 1
	})
	mu.Lock()
	first := snapshots[0]
	mu.Unlock()
	if !first.Privileged || first.Loading {
		t.Fatalf("privileged flag must settle before detail fetch: %+v", first)
	}
	if first.Admin != nil {
		t.Fatalf("detail should not be hydrated yet")
	}

	close(details.gate)
	<-done
}

func TestDetailFetchHydratesThroughMatrix(t *testing.T) {
	details := newFakeDetails()
	details.rows[7] = models.AdminDetail{
		AccountID:   7,
		Role:        models.RoleAdmin,
		AdminLevel:  models.LevelLead,
		Department:  "Programs",
		Permissions: datatypes.JSON([]byte(`["view_dashboard"]`)),
	}
	store := New(context.Background(), details)

	store.handleSession(adminSession(models.RoleAdmin))

	snap := store.Snapshot()
	if snap.Admin == nil {
		t.Fatalf("missing admin profile")
	}
	if !snap.Admin.Permissions.ApproveApplications || !snap.Admin.Permissions.ManageUsers {
		t.Fatalf("lead admin capabilities missing: %+v", snap.Admin.Permissions)
	}
	if snap.Admin.Permissions.SystemSettings {
		t.Fatalf("plain admin must not get system settings")
	}
	if snap.Admin.Fallback {
		t.Fatalf("hydrated profile marked as fallback")
	}
}

func TestDetailFetchFailureSynthesizesFallback(t *testing.T) {
	details := newFakeDetails()
	details.failGet = true
	store := New(context.Background(), details)

	store.handleSession(adminSession(models.RoleSuperAdmin))

	snap := store.Snapshot()
	if !snap.Privileged {
		t.Fatalf("privileged flag lost on fallback")
	}
	if snap.Admin == nil || !snap.Admin.Fallback {
		t.Fatalf("expected synthesized fallback: %+v", snap.Admin)
	}
	if !snap.Admin.Permissions.SystemSettings {
		t.Fatalf("privileged fallback should fail open")
	}
}

func TestDetailAbsenceSynthesizesFallback(t *testing.T) {
	store := New(context.Background(), newFakeDetails())
	store.handleSession(adminSession(models.RoleAdmin))

	snap := store.Snapshot()
	if snap.Admin == nil || !snap.Admin.Fallback {
		t.Fatalf("expected synthesized fallback: %+v", snap.Admin)
	}
}

func TestModeratorIsNotPrivileged(t *testing.T) {
	details := newFakeDetails()
	details.rows[7] = models.AdminDetail{AccountID: 7, Role: models.RoleModerator, AdminLevel: models.LevelSenior}
	store := New(context.Background(), details)

	store.handleSession(adminSession(models.RoleModerator))

	snap := store.Snapshot()
	if snap.Privileged {
		t.Fatalf("moderator must not be privileged")
	}
	if snap.Admin == nil || !snap.Admin.Permissions.ScoreApplications {
		t.Fatalf("senior moderator should score: %+v", snap.Admin)
	}
	if snap.Admin.Permissions.ApproveApplications {
		t.Fatalf("moderator must never approve")
	}
}

func TestPlainUserClearsRole(t *testing.T) {
	store := New(context.Background(), newFakeDetails())
	store.handleSession(adminSession(models.RoleUser))

	snap := store.Snapshot()
	if snap.Privileged || snap.Admin != nil || snap.Loading {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestStaleDetailFetchIsDiscarded(t *testing.T) {
	details := newFakeDetails()
	details.gate = make(chan struct{})
	store := New(context.Background(), details)

	done := make(chan struct{})
	go func() {
		store.handleSession(adminSession(models.RoleAdmin))
		close(done)
	}()
	waitFor(t, func() bool { return store.Snapshot().Privileged })

	// A sign-out arrives while the detail fetch is still blocked.
	store.handleSession(session.Snapshot{})
	close(details.gate)
	<-done

	snap := store.Snapshot()
	if snap.Privileged || snap.Admin != nil {
		t.Fatalf("stale fetch overwrote newer state: %+v", snap)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
