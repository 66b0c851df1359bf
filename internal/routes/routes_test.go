package routes

import "testing"

func TestRouteStringRoundTrip(t *testing.T) {
	all := []Route{
		SignUp,
		VerifyEmail,
		ProfileSetup,
		Home,
		SubmitYouth,
		AdminDashboard,
		ApplicationDetail(42),
	}
	for _, route := range all {
		parsed, ok := Parse(route.String())
		if !ok {
			t.Fatalf("parse %q failed", route.String())
		}
		if parsed != route {
			t.Fatalf("round trip mismatch: %v vs %v", parsed, route)
		}
	}
}

func TestParseRejectsUnknownRoutes(t *testing.T) {
	for _, raw := range []string{"#admin", "#application-detail/abc", "#application-detail/", "#nonsense", ""} {
		if _, ok := Parse(raw); ok {
			t.Fatalf("parse %q should fail", raw)
		}
	}
}

func TestParseApplicationDetailID(t *testing.T) {
	route, ok := Parse("#application-detail/97")
	if !ok {
		t.Fatalf("parse failed")
	}
	if route.Kind != KindApplicationDetail || route.ApplicationID != 97 {
		t.Fatalf("unexpected route: %+v", route)
	}
}

func TestMemoryRouterNotifiesAndUnsubscribes(t *testing.T) {
	router := NewMemoryRouter(SignUp)

	var seen []Route
	unsubscribe := router.OnChange(func(route Route) {
		seen = append(seen, route)
	})

	router.Go(Home)
	if router.Current() != Home {
		t.Fatalf("current not updated")
	}

	unsubscribe()
	router.Go(AdminDashboard)

	if len(seen) != 1 || seen[0] != Home {
		t.Fatalf("unexpected notifications: %v", seen)
	}
}
