package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/client"
	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/domain"
	"stadtwache/internal/services"
	"stadtwache/internal/util"
)

// fakeSession is a Session whose state the test drives
type fakeSession struct {
	mu      sync.Mutex
	state   client.SessionState
	subs    map[int]func(client.SessionState)
	next    int
	loginFn func(ctx context.Context, username, password string) error
	logouts int
}

func newFakeSession(state client.SessionState) *fakeSession {
	return &fakeSession{state: state, subs: make(map[int]func(client.SessionState))}
}

func (f *fakeSession) State() client.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Subscribe(fn func(client.SessionState)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeSession) set(state client.SessionState) {
	f.mu.Lock()
	f.state = state
	var subs []func(client.SessionState)
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

func (f *fakeSession) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginFn != nil {
		if err := f.loginFn(ctx, username, password); err != nil {
			return "", err
		}
	}
	f.set(client.Authenticated)
	return "token", nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
	f.set(client.Anonymous)
	return nil
}

// notifications collects what the site shows
type notifications struct {
	mu   sync.Mutex
	list []Notification
}

func (n *notifications) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, note)
}

func (n *notifications) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.list...)
}

func (n *notifications) errors() []string {
	var out []string
	for _, note := range n.all() {
		if note.Level == LevelError {
			out = append(out, note.Message)
		}
	}
	return out
}

// backend is a live API server counting requests per method and path
type backend struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{
		URL: "sqlite:///file:site_" + name + "_" + time.Now().Format("150405.000000000") + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)

	hash, err := util.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{Username: "admin", Email: "admin@stadtwache.de", HashedPassword: hash, IsActive: true}).Error)

	srv := services.NewServer(services.Deps{
		DB:      db,
		Log:     zap.NewNop(),
		Tokens:  util.NewTokenIssuer("site-test-secret-with-enough-length", time.Hour),
		Uploads: config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20},
		Version: "test",
	})
	b := &backend{calls: make(map[string]int)}
	api := srv.Handler()
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		b.Close()
		srv.Wait()
	})
	return b
}

// adminClient returns a client signed in against b
func adminClient(t *testing.T, b *backend) *client.Client {
	t.Helper()
	c := client.New(client.Config{BaseURL: b.URL}, nil)
	_, err := c.Session.Login(t.Context(), "admin", "admin123")
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T {
	return &v
}
