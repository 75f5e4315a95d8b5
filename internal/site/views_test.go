package site

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/domain"
)

func TestView_DiscardsResultAfterUnmount(t *testing.T) {
	release := make(chan struct{})
	v := newView("news", func(ctx context.Context) ([]string, error) {
		<-release
		return []string{"spät"}, nil
	}, nil, zap.NewNop())

	done := v.Mount(t.Context())
	state, _, _ := v.Snapshot()
	assert.Equal(t, Loading, state)

	v.Unmount()
	close(release)
	<-done

	state, data, err := v.Snapshot()
	assert.Equal(t, Idle, state)
	assert.Nil(t, data)
	assert.NoError(t, err)
}

func TestView_RemountLoadsAgain(t *testing.T) {
	first, second := make(chan struct{}), make(chan struct{})
	calls := 0
	v := newView("about", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-first
			return "alt", nil
		}
		<-second
		return "neu", nil
	}, nil, zap.NewNop())

	done1 := v.Mount(t.Context())
	v.Unmount()
	close(first)
	<-done1

	done2 := v.Mount(t.Context())
	close(second)
	<-done2

	state, data, _ := v.Snapshot()
	assert.Equal(t, Ready, state)
	assert.Equal(t, "neu", data)
}

func TestView_FailureNotifiesOnce(t *testing.T) {
	notes := &notifications{}
	v := newView("contact", func(context.Context) (int, error) { return 0, errors.New("offline") }, notes, zap.NewNop())

	<-v.Mount(t.Context())
	state, _, err := v.Snapshot()
	assert.Equal(t, Failed, state)
	assert.EqualError(t, err, "offline")
	assert.Equal(t, []string{"Fehler beim Laden: contact"}, notes.errors())
}

func TestViews_Home(t *testing.T) {
	b := newBackend(t)
	admin := adminClient(t, b)
	for _, title := range []string{"Eins", "Zwei", "Drei", "Vier"} {
		_, err := admin.News.Create(t.Context(), domain.NewsInput{Title: title, Content: "Text"})
		require.NoError(t, err)
	}

	views := NewViews(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())
	<-views.Home.Mount(t.Context())
	state, home, err := views.Home.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, Ready, state)
	assert.Equal(t, "Stadtwache", home.Config.HeroTitle)
	assert.Len(t, home.Latest, 3)

	_, err = admin.Homepage.Update(t.Context(), domain.HomepagePatch{ShowLatestNews: ptr(false)}, nil)
	require.NoError(t, err)
	before := b.count("GET", "/api/news/latest")
	<-views.Home.Mount(t.Context())
	_, home, _ = views.Home.Snapshot()
	assert.Empty(t, home.Latest)
	assert.Equal(t, before, b.count("GET", "/api/news/latest"))

	<-views.Contact.Mount(t.Context())
	_, contact, err := views.Contact.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "110", contact.EmergencyNumber)

	<-views.ReportTypes.Mount(t.Context())
	_, types, _ := views.ReportTypes.Snapshot()
	assert.Equal(t, domain.IncidentTypes, types)
}

func TestViews_FetchIndependently(t *testing.T) {
	b := newBackend(t)
	views := NewViews(client.New(client.Config{BaseURL: b.URL}, nil), nil, zap.NewNop())

	<-views.Home.Mount(t.Context())
	<-views.Contact.Mount(t.Context())
	assert.Equal(t, 2, b.count("GET", "/api/homepage"))
}
