package intent

import (
	"context"
	"testing"

	"github.com/lanternfest/portal/internal/routes"
)

func TestMemoryStoreSetGetClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, errGet := store.Get(ctx, "session-a")
	if errGet != nil || got != nil {
		t.Fatalf("expected empty store, got %v err %v", got, errGet)
	}

	if errSet := store.Set(ctx, "session-a", routes.SubmitYouth); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}

	got, errGet = store.Get(ctx, "session-a")
	if errGet != nil {
		t.Fatalf("get: %v", errGet)
	}
	if got == nil || *got != routes.SubmitYouth {
		t.Fatalf("unexpected intent: %v", got)
	}

	// Other scopes stay isolated.
	other, _ := store.Get(ctx, "session-b")
	if other != nil {
		t.Fatalf("scope leak: %v", other)
	}

	if errClear := store.Clear(ctx, "session-a"); errClear != nil {
		t.Fatalf("clear: %v", errClear)
	}
	got, _ = store.Get(ctx, "session-a")
	if got != nil {
		t.Fatalf("intent survived clear: %v", got)
	}
}

func TestMemoryStoreReplacesPriorIntent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if errSet := store.Set(ctx, "s", routes.SubmitYouth); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}
	if errSet := store.Set(ctx, "s", routes.ApplicationDetail(7)); errSet != nil {
		t.Fatalf("set: %v", errSet)
	}

	got, _ := store.Get(ctx, "s")
	if got == nil || got.Kind != routes.KindApplicationDetail || got.ApplicationID != 7 {
		t.Fatalf("unexpected intent: %v", got)
	}
}

func TestMemoryStoreRejectsEmptyScope(t *testing.T) {
	store := NewMemoryStore()
	if errSet := store.Set(context.Background(), "  ", routes.Home); errSet == nil {
		t.Fatalf("expected error for empty scope")
	}
}
