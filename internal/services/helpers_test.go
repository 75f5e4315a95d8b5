package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
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
	"gorm.io/gorm"

	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/domain"
	"stadtwache/internal/util"
)

const (
	testAdmin    = "admin"
	testPassword = "admin123"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subject)
	return m.err
}

func (m *fakeMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type fakeSMS struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSMS) SendSMS(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, phone+": "+message)
	return nil
}

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type testEnv struct {
	t      *testing.T
	srv    *Server
	http   *httptest.Server
	db     *gorm.DB
	redis  *miniredis.Miniredis
	mailer *fakeMailer
	sms    *fakeSMS
}

type envOption func(*Deps)

func withRedis(mr *miniredis.Miniredis) envOption {
	return func(d *Deps) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		d.Cache = NewCache(client, time.Minute, zap.NewNop())
		d.Denylist = NewDenylist(client)
	}
}

func withLimiter(l *util.RateLimiter) envOption {
	return func(d *Deps) { d.Limiter = l }
}

func withTrustedProxies(ips ...string) envOption {
	return func(d *Deps) { d.TrustedProxies = ips }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{
		URL: "sqlite:///file:" + name + "_" + time.Now().Format("150405.000000000") + "?mode=memory&cache=shared",
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

	env := &testEnv{t: t, db: db, mailer: &fakeMailer{}, sms: &fakeSMS{}}
	deps := Deps{
		DB:       db,
		Log:      zap.NewNop(),
		Tokens:   util.NewTokenIssuer("test-secret-key-with-enough-length!!", time.Hour),
		Notifier: NewNotifier(env.mailer, env.sms, "wache@stadtwache.de", "+49 170 1234567", zap.NewNop()),
		Uploads:  config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20},
		Version:  "test",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.srv = NewServer(deps)
	env.http = httptest.NewServer(env.srv.Handler())
	t.Cleanup(func() {
		env.http.Close()
		env.srv.Wait()
	})
	return env
}

// do sends a JSON request and decodes a JSON response into out when non-nil
func (e *testEnv) do(method, path, token string, body any, out any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token, out)
}

func (e *testEnv) send(req *http.Request, token string, out any) *http.Response {
	e.t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, out), string(raw))
	}
	return resp
}

func (e *testEnv) login() string {
	e.t.Helper()

	var result LoginResult
	resp := e.do(http.MethodPost, "/api/admin/login", "", LoginRequest{Username: testAdmin, Password: testPassword}, &result)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(e.t, result.AccessToken)
	return result.AccessToken
}

func ptr[T any](v T) *T {
	return &v
}
