package session

import "errors"

var (
	ErrInvalidPage   = errors.New("unknown page")
	ErrLoginRequired = errors.New("login required for this page")
	ErrNotNavigable  = errors.New("page not reachable from current page")
)

// Page is one of the closed set of UI states. Free-form strings never enter
// the transition logic; everything is parsed into a Page first.
type Page string

const (
	PageHome           Page = "home"
	PageLogin          Page = "login"
	PageForgotPassword Page = "forgot_password"
	PageResetPassword  Page = "reset_password"
	PageSignup         Page = "signup"
	PageDashboard      Page = "dashboard"
	PagePolicyInquiry  Page = "policy_inquiry"
	PageDeniedInquiry  Page = "denied_inquiry"
)

// ParsePage validates a client-supplied page tag
func ParsePage(s string) (Page, error) {
	p := Page(s)
	switch p {
	case PageHome, PageLogin, PageForgotPassword, PageResetPassword,
		PageSignup, PageDashboard, PagePolicyInquiry, PageDeniedInquiry:
		return p, nil
	}
	return "", ErrInvalidPage
}

// RequiresLogin reports whether a page sits behind authentication
func (p Page) RequiresLogin() bool {
	switch p {
	case PageDashboard, PagePolicyInquiry, PageDeniedInquiry:
		return true
	case PageHome, PageLogin, PageForgotPassword, PageResetPassword, PageSignup:
		return false
	}
	return false
}

// DefaultPage is where a session starts: the dashboard once logged in, the
// landing page otherwise.
func DefaultPage(authenticated bool) Page {
	if authenticated {
		return PageDashboard
	}
	return PageHome
}

// transitions is the explicit navigation graph: every edge corresponds to a
// button in the UI. Login, signup completion, and logout move the page as a
// side effect of those flows and are not navigation edges.
var transitions = map[Page][]Page{
	PageHome:           {PageLogin, PageSignup},
	PageLogin:          {PageHome, PageForgotPassword, PageSignup},
	PageForgotPassword: {PageLogin, PageResetPassword},
	PageResetPassword:  {PageForgotPassword, PageLogin},
	PageSignup:         {PageHome, PageLogin},
	PageDashboard:      {PagePolicyInquiry, PageDeniedInquiry},
	PagePolicyInquiry:  {PageDashboard},
	PageDeniedInquiry:  {PageDashboard},
}

// Navigate validates a transition and returns the new page. The current
// page is returned unchanged alongside any error.
func Navigate(current, target Page, authenticated bool) (Page, error) {
	if _, err := ParsePage(string(target)); err != nil {
		return current, err
	}
	if _, err := ParsePage(string(current)); err != nil {
		// Corrupt stored state resets to the default rather than wedging
		current = DefaultPage(authenticated)
	}

	if target.RequiresLogin() && !authenticated {
		return current, ErrLoginRequired
	}
	// Logged-in users leave the authenticated area only via logout
	if !target.RequiresLogin() && authenticated {
		return current, ErrNotNavigable
	}

	for _, next := range transitions[current] {
		if next == target {
			return target, nil
		}
	}
	return current, ErrNotNavigable
}
