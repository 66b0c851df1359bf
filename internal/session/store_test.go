package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lanternfest/portal/internal/identity"
	"github.com/lanternfest/portal/internal/models"
)

// fakeProvider is a manual push identity provider.
type fakeProvider struct {
	mu        sync.Mutex
	current   *identity.Identity
	listeners []func(*identity.Identity)
}

func (p *fakeProvider) Subscribe(fn func(*identity.Identity)) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	current := p.current
	p.mu.Unlock()
	fn(current)
	return func() {}
}

func (p *fakeProvider) Current() *identity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProvider) SignOut() { p.push(nil) }

func (p *fakeProvider) push(id *identity.Identity) {
	p.mu.Lock()
	p.current = id
	listeners := append([]func(*identity.Identity){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(id)
	}
}

// fakeProfiles is a map-backed profile store with error injection.
type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[uint64]models.Profile
	failGet bool
	updates []map[string]any
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[uint64]models.Profile{}}
}

func (f *fakeProfiles) Get(_ context.Context, accountID uint64) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errors.New("boom")
	}
	row, ok := f.rows[accountID]
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func (f *fakeProfiles) Set(_ context.Context, accountID uint64, profile models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile.AccountID = accountID
	f.rows[accountID] = profile
	return nil
}

func (f *fakeProfiles) Update(_ context.Context, accountID uint64, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	row, ok := f.rows[accountID]
	if !ok {
		return nil
	}
	if v, ok := fields["email_verified"]; ok {
		row.EmailVerified = v.(bool)
	}
	if v, ok := fields["is_profile_complete"]; ok {
		row.IsProfileComplete = v.(bool)
	}
	f.rows[accountID] = row
	return nil
}

func verifiedIdentity(id uint64) *identity.Identity {
	return &identity.Identity{ID: id, Email: "mirai@example.com", EmailVerified: true}
}

func completeProfile(id uint64) models.Profile {
	return models.Profile{
		AccountID:         id,
		FullName:          "Mirai Tanaka",
		Email:             "mirai@example.com",
		Phone:             "+81-90-0000-0000",
		BirthDate:         models.BirthDate{Time: time.Date(2004, time.June, 15, 0, 0, 0, 0, time.UTC)},
		Role:              models.RoleUser,
		EmailVerified:     true,
		IsProfileComplete: true,
	}
}

func TestStoreLoadsProfileOnIdentity(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	_ = profileStore.Set(context.Background(), 1, completeProfile(1))

	store := New(context.Background(), provider, profileStore)
	defer store.Close()

	var events []Event
	store.Subscribe(func(event Event) { events = append(events, event) })
	store.Start()

	// Initial push is a nil identity: loading settles immediately.
	if snap := store.Snapshot(); snap.Loading || snap.Identity != nil {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	provider.push(verifiedIdentity(1))

	snap := store.Snapshot()
	if snap.Loading {
		t.Fatalf("loading should settle after fetch")
	}
	if snap.Identity == nil || snap.Identity.ID != 1 {
		t.Fatalf("missing identity: %+v", snap)
	}
	if snap.Profile == nil || snap.Profile.FullName != "Mirai Tanaka" {
		t.Fatalf("missing profile: %+v", snap)
	}

	// Identity change publishes before the settled fetch does.
	var sawLoading bool
	for _, event := range events {
		if event.Kind == EventIdentityChanged && event.Snapshot.Loading {
			sawLoading = true
		}
	}
	if !sawLoading {
		t.Fatalf("expected a loading publish before settle")
	}
}

func TestStoreSignOutClearsState(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	_ = profileStore.Set(context.Background(), 1, completeProfile(1))

	store := New(context.Background(), provider, profileStore)
	defer store.Close()
	store.Start()

	provider.push(verifiedIdentity(1))
	provider.push(nil)

	snap := store.Snapshot()
	if snap.Identity != nil || snap.Profile != nil || snap.Loading {
		t.Fatalf("sign-out did not clear state: %+v", snap)
	}
}

func TestStoreFetchFailureKeepsLastProfile(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	_ = profileStore.Set(context.Background(), 1, completeProfile(1))

	store := New(context.Background(), provider, profileStore)
	defer store.Close()
	store.Start()

	provider.push(verifiedIdentity(1))
	if store.Snapshot().Profile == nil {
		t.Fatalf("first fetch should succeed")
	}

	profileStore.mu.Lock()
	profileStore.failGet = true
	profileStore.mu.Unlock()

	store.Refresh()

	snap := store.Snapshot()
	if snap.Loading {
		t.Fatalf("failure must still settle loading")
	}
	if snap.Profile == nil {
		t.Fatalf("failure must keep the last profile")
	}
}

func TestStoreFirstFetchFailureLeavesNilProfile(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	profileStore.failGet = true

	store := New(context.Background(), provider, profileStore)
	defer store.Close()
	store.Start()

	provider.push(verifiedIdentity(1))

	snap := store.Snapshot()
	if snap.Loading || snap.Profile != nil {
		t.Fatalf("unexpected snapshot after first failure: %+v", snap)
	}
}

func TestStoreHealsVerifiedFlagDriftBeforePublishing(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	profile := completeProfile(1)
	profile.EmailVerified = false // drifted: provider says verified
	_ = profileStore.Set(context.Background(), 1, profile)

	store := New(context.Background(), provider, profileStore)
	defer store.Close()
	store.Start()

	provider.push(verifiedIdentity(1))

	snap := store.Snapshot()
	if snap.Profile == nil || !snap.Profile.EmailVerified {
		t.Fatalf("published profile should carry the corrected flag: %+v", snap.Profile)
	}

	stored, _ := profileStore.Get(context.Background(), 1)
	if stored == nil || !stored.EmailVerified {
		t.Fatalf("stored flag not healed")
	}
}

func TestStoreHealsCompletenessDriftOnRead(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	profile := completeProfile(1)
	profile.Phone = "" // fields incomplete, stored flag still true
	_ = profileStore.Set(context.Background(), 1, profile)

	store := New(context.Background(), provider, profileStore)
	defer store.Close()
	store.Start()

	provider.push(verifiedIdentity(1))

	// The published snapshot keeps the as-read stored flag for this cycle.
	snap := store.Snapshot()
	if snap.Profile == nil || !snap.Profile.IsProfileComplete {
		t.Fatalf("snapshot should keep the as-read stored flag: %+v", snap.Profile)
	}

	// The database was corrected, so the next read observes false.
	stored, _ := profileStore.Get(context.Background(), 1)
	if stored == nil || stored.IsProfileComplete {
		t.Fatalf("stored completeness flag not corrected")
	}
}

func TestStoreSubscriberOrder(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	_ = profileStore.Set(context.Background(), 1, completeProfile(1))

	store := New(context.Background(), provider, profileStore)
	defer store.Close()

	var order []string
	store.Subscribe(func(Event) { order = append(order, "first") })
	store.Subscribe(func(Event) { order = append(order, "second") })
	store.Start()

	provider.push(verifiedIdentity(1))

	if len(order) < 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("subscribers ran out of order: %v", order)
	}
}

func TestStoreCloseStopsPublishing(t *testing.T) {
	provider := &fakeProvider{}
	profileStore := newFakeProfiles()
	store := New(context.Background(), provider, profileStore)
	store.Start()

	var count int
	store.Subscribe(func(Event) { count++ })
	store.Close()

	provider.push(verifiedIdentity(1))
	if count != 0 {
		t.Fatalf("closed store still publishing")
	}
}
