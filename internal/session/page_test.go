package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	for _, s := range []string{"home", "login", "forgot_password", "reset_password", "signup", "dashboard", "policy_inquiry", "denied_inquiry"} {
		p, err := ParsePage(s)
		require.NoError(t, err)
		assert.Equal(t, Page(s), p)
	}

	for _, s := range []string{"", "Home", "admin", "dashboard "} {
		_, err := ParsePage(s)
		assert.ErrorIs(t, err, ErrInvalidPage, s)
	}
}

func TestDefaultPage(t *testing.T) {
	assert.Equal(t, PageHome, DefaultPage(false))
	assert.Equal(t, PageDashboard, DefaultPage(true))
}

func TestNavigateAnonymousEdges(t *testing.T) {
	tests := []struct {
		from    Page
		to      Page
		allowed bool
	}{
		{PageHome, PageLogin, true},
		{PageHome, PageSignup, true},
		{PageHome, PageForgotPassword, false},
		{PageLogin, PageForgotPassword, true},
		{PageLogin, PageHome, true},
		{PageLogin, PageSignup, true},
		{PageLogin, PageResetPassword, false},
		{PageForgotPassword, PageResetPassword, true},
		{PageForgotPassword, PageLogin, true},
		{PageResetPassword, PageLogin, true},
		{PageResetPassword, PageForgotPassword, true},
		{PageSignup, PageHome, true},
		{PageSignup, PageLogin, true},
		{PageSignup, PageForgotPassword, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			got, err := Navigate(tt.from, tt.to, false)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
			} else {
				assert.ErrorIs(t, err, ErrNotNavigable)
				assert.Equal(t, tt.from, got)
			}
		})
	}
}

func TestNavigateAuthenticatedEdges(t *testing.T) {
	tests := []struct {
		from    Page
		to      Page
		allowed bool
	}{
		{PageDashboard, PagePolicyInquiry, true},
		{PageDashboard, PageDeniedInquiry, true},
		{PagePolicyInquiry, PageDashboard, true},
		{PageDeniedInquiry, PageDashboard, true},
		{PagePolicyInquiry, PageDeniedInquiry, false},
		{PageDeniedInquiry, PagePolicyInquiry, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			got, err := Navigate(tt.from, tt.to, true)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
			} else {
				assert.ErrorIs(t, err, ErrNotNavigable)
				assert.Equal(t, tt.from, got)
			}
		})
	}
}

func TestNavigateAuthGating(t *testing.T) {
	// Anonymous users never reach pages behind authentication
	got, err := Navigate(PageHome, PageDashboard, false)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, PageHome, got)

	// Logged-in users leave the authenticated area only via logout
	got, err = Navigate(PageDashboard, PageHome, true)
	assert.ErrorIs(t, err, ErrNotNavigable)
	assert.Equal(t, PageDashboard, got)
}

func TestNavigateRejectsUnknownTarget(t *testing.T) {
	got, err := Navigate(PageHome, Page("admin"), false)
	assert.ErrorIs(t, err, ErrInvalidPage)
	assert.Equal(t, PageHome, got)
}

func TestNavigateResetsCorruptCurrentPage(t *testing.T) {
	// Corrupt stored state falls back to the default page before routing
	got, err := Navigate(Page("garbage"), PageLogin, false)
	require.NoError(t, err)
	assert.Equal(t, PageLogin, got)

	got, err = Navigate(Page("garbage"), PagePolicyInquiry, true)
	require.NoError(t, err)
	assert.Equal(t, PagePolicyInquiry, got)
}
