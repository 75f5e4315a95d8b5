package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/domain"
	"stadtwache/internal/services"
	"stadtwache/internal/util"
)

const (
	testSecret   = "client-test-secret-with-enough-length"
	testAdmin    = "admin"
	testPassword = "admin123"
)

// backend is a live API server plus a per-path request counter
type backend struct {
	*httptest.Server
	redis *miniredis.Miniredis

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
		URL: "sqlite:///file:client_" + name + "_" + time.Now().Format("150405.000000000") + "?mode=memory&cache=shared",
	}, zap.NewNop())
	require.NoError(t, err)

	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		Username:       testAdmin,
		Email:          "admin@stadtwache.de",
		HashedPassword: hash,
		IsActive:       true,
	}).Error)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	srv := services.NewServer(services.Deps{
		DB:       db,
		Log:      zap.NewNop(),
		Tokens:   util.NewTokenIssuer(testSecret, time.Hour),
		Denylist: services.NewDenylist(rdb),
		Uploads:  config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20},
		Version:  "test",
	})

	b := &backend{redis: mr, calls: make(map[string]int)}
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

func newClient(t *testing.T, b *backend, store TokenStore) *Client {
	t.Helper()
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return New(Config{BaseURL: b.URL}, store)
}

// signedIn returns a client whose session is authenticated
func signedIn(t *testing.T, b *backend) *Client {
	t.Helper()
	c := newClient(t, b, nil)
	_, err := c.Session.Login(t.Context(), testAdmin, testPassword)
	require.NoError(t, err)
	return c
}

// recorder collects session state changes
type recorder struct {
	mu     sync.Mutex
	states []SessionState
}

func (r *recorder) record(s SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) seen() []SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SessionState(nil), r.states...)
}

func ptr[T any](v T) *T {
	return &v
}
