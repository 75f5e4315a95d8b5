package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stadtwache/internal/client"
)

func TestNewRouter_InitialRoute(t *testing.T) {
	tests := []struct {
		location string
		state    client.SessionState
		want     Route
	}{
		{location: "https://stadtwache.de/", state: client.Anonymous, want: PublicRoute{Section: SectionHome}},
		{location: "https://stadtwache.de/news", state: client.Anonymous, want: PublicRoute{Section: SectionHome}},
		{location: "https://stadtwache.de/?section=report", state: client.Anonymous, want: PublicRoute{Section: SectionHome}},
		{location: "https://stadtwache.de/administration", state: client.Anonymous, want: PublicRoute{Section: SectionHome}},
		{location: "https://stadtwache.de/admin", state: client.Anonymous, want: AdminRoute{View: ViewLogin}},
		{location: "https://stadtwache.de/admin/", state: client.Verifying, want: AdminRoute{View: ViewVerifying}},
		{location: "/admin/reports?tab=chat", state: client.Authenticated, want: AdminRoute{View: ViewDashboard}},
		{location: "::not a url", state: client.Anonymous, want: PublicRoute{Section: SectionHome}},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			r := NewRouter(tt.location, newFakeSession(tt.state))
			defer r.Close()
			assert.Equal(t, tt.want, r.Route())
		})
	}
}

func TestRouter_SessionRefinesAdminView(t *testing.T) {
	session := newFakeSession(client.Anonymous)
	r := NewRouter("/admin", session)
	defer r.Close()

	var seen []string
	r.Subscribe(func(route Route) { seen = append(seen, Describe(route)) })

	session.set(client.Verifying)
	session.set(client.Authenticated)
	assert.Equal(t, AdminRoute{View: ViewDashboard}, r.Route())

	// token expiry sends the admin back to the gate
	session.set(client.Anonymous)
	assert.Equal(t, AdminRoute{View: ViewLogin}, r.Route())
	assert.Equal(t, []string{"admin(verifying)", "admin(dashboard)", "admin(login)"}, seen)
}

func TestRouter_SessionIgnoredOnPublicPages(t *testing.T) {
	session := newFakeSession(client.Anonymous)
	r := NewRouter("/", session)
	defer r.Close()

	require.NoError(t, r.Navigate(SectionFeedback))
	session.set(client.Authenticated)
	assert.Equal(t, PublicRoute{Section: SectionFeedback}, r.Route())

	r.EnterAdmin()
	assert.Equal(t, AdminRoute{View: ViewDashboard}, r.Route())
}

func TestRouter_Navigate(t *testing.T) {
	r := NewRouter("/", newFakeSession(client.Anonymous))
	defer r.Close()

	for _, section := range Sections {
		require.NoError(t, r.Navigate(section))
		assert.Equal(t, PublicRoute{Section: section}, r.Route())
	}
	assert.Error(t, r.Navigate("dashboard"))
	assert.Equal(t, PublicRoute{Section: SectionContact}, r.Route())
}

func TestRouter_LogoutReturnsHome(t *testing.T) {
	session := newFakeSession(client.Authenticated)
	r := NewRouter("/admin", session)
	defer r.Close()

	var seen []Route
	r.Subscribe(func(route Route) { seen = append(seen, route) })

	require.NoError(t, r.Logout(t.Context()))
	assert.Equal(t, PublicRoute{Section: SectionHome}, r.Route())
	assert.Equal(t, 1, session.logouts)
	assert.Equal(t, []Route{PublicRoute{Section: SectionHome}}, seen)
}

func TestRouter_CloseStopsFollowingSession(t *testing.T) {
	session := newFakeSession(client.Anonymous)
	r := NewRouter("/admin", session)
	r.Close()

	session.set(client.Authenticated)
	assert.Equal(t, AdminRoute{View: ViewLogin}, r.Route())
}

func TestPathAndDescribe(t *testing.T) {
	assert.Equal(t, "/", Path(PublicRoute{Section: SectionNews}))
	assert.Equal(t, "/admin", Path(AdminRoute{View: ViewLogin}))
	assert.Equal(t, "public(news)", Describe(PublicRoute{Section: SectionNews}))
	assert.Equal(t, "admin(dashboard)", Describe(AdminRoute{View: ViewDashboard}))
	assert.Panics(t, func() { Path(nil) })
}
