// Package routes defines the closed set of portal screens and the router
// contract. Screens are a tagged union rather than raw hash strings so that
// dynamic segments carry typed parameters.
package routes

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a portal screen.
type Kind int

// Portal screens.
const (
	// KindSignUp is the public sign-up / sign-in screen.
	KindSignUp Kind = iota
	// KindVerifyEmail is the email verification step.
	KindVerifyEmail
	// KindProfileSetup is the profile completion step.
	KindProfileSetup
	// KindHome is the default landing screen for participants.
	KindHome
	// KindSubmitYouth is the youth-track submission form.
	KindSubmitYouth
	// KindAdminDashboard is the landing screen for privileged roles.
	KindAdminDashboard
	// KindApplicationDetail is the per-application review screen.
	KindApplicationDetail
)

// Route is one screen plus its typed parameters.
type Route struct {
	Kind Kind

	// ApplicationID is set for KindApplicationDetail only.
	ApplicationID uint64
}

// Screen constructors.
var (
	// SignUp is the sign-up screen route.
	SignUp = Route{Kind: KindSignUp}
	// VerifyEmail is the email verification route.
	VerifyEmail = Route{Kind: KindVerifyEmail}
	// ProfileSetup is the profile completion route.
	ProfileSetup = Route{Kind: KindProfileSetup}
	// Home is the participant landing route.
	Home = Route{Kind: KindHome}
	// SubmitYouth is the youth submission route.
	SubmitYouth = Route{Kind: KindSubmitYouth}
	// AdminDashboard is the privileged landing route.
	AdminDashboard = Route{Kind: KindAdminDashboard}
)

// ApplicationDetail returns the detail route for one application.
func ApplicationDetail(id uint64) Route {
	return Route{Kind: KindApplicationDetail, ApplicationID: id}
}

// String encodes the route in the external router's hash format.
func (r Route) String() string {
	switch r.Kind {
	case KindSignUp:
		return "#signup"
	case KindVerifyEmail:
		return "#verify-email"
	case KindProfileSetup:
		return "#profile-setup"
	case KindHome:
		return "#home"
	case KindSubmitYouth:
		return "#submit-youth"
	case KindAdminDashboard:
		return "#admin/dashboard"
	case KindApplicationDetail:
		return fmt.Sprintf("#application-detail/%d", r.ApplicationID)
	default:
		return "#home"
	}
}

// Parse decodes a hash route string into a Route.
func Parse(raw string) (Route, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	switch trimmed {
	case "signup":
		return SignUp, true
	case "verify-email":
		return VerifyEmail, true
	case "profile-setup":
		return ProfileSetup, true
	case "home", "":
		return Home, trimmed == "home"
	case "submit-youth":
		return SubmitYouth, true
	case "admin/dashboard":
		return AdminDashboard, true
	}
	if rest, ok := strings.CutPrefix(trimmed, "application-detail/"); ok {
		id, errParse := strconv.ParseUint(rest, 10, 64)
		if errParse != nil {
			return Route{}, false
		}
		return ApplicationDetail(id), true
	}
	return Route{}, false
}

// Router is the external navigation primitive the flow layer drives.
type Router interface {
	// Current returns the route currently displayed.
	Current() Route
	// Go navigates to a route. Fire-and-forget.
	Go(route Route)
	// OnChange registers a route change callback and returns an unsubscribe.
	OnChange(fn func(Route)) func()
}
