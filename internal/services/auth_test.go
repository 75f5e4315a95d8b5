package services

import (
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stadtwache/internal/domain"
	"stadtwache/internal/util"
)

func TestLogin_FailureMessageDoesNotRevealUser(t *testing.T) {
	env := newTestEnv(t)

	var unknown, wrong ErrorBody
	r1 := env.do(http.MethodPost, "/api/admin/login", "", LoginRequest{Username: "nobody", Password: "x"}, &unknown)
	r2 := env.do(http.MethodPost, "/api/admin/login", "", LoginRequest{Username: testAdmin, Password: "wrong"}, &wrong)

	assert.Equal(t, http.StatusUnauthorized, r1.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, r2.StatusCode)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, loginFailed, wrong.Message)
}

func TestLogin_UnknownUserStillComparesPassword(t *testing.T) {
	var (
		mu     sync.Mutex
		hashes []string
	)
	passwordMatches = func(password, hash string) bool {
		mu.Lock()
		hashes = append(hashes, hash)
		mu.Unlock()
		return util.CheckPasswordHash(password, hash)
	}
	t.Cleanup(func() { passwordMatches = util.CheckPasswordHash })
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/admin/login", "", LoginRequest{Username: "nobody", Password: "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, hashes, 1)
	assert.Equal(t, unknownUserHash(), hashes[0])
	assert.True(t, strings.HasPrefix(hashes[0], "$2a$"))
}

func TestLogin_EmptyCredentialsAreValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	var body ErrorBody
	resp := env.do(http.MethodPost, "/api/admin/login", "", LoginRequest{Username: "  ", Password: ""}, &body)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, NameValidation, body.Name)
	assert.Contains(t, body.Fields, "password")
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()

	var user domain.User
	resp := env.do(http.MethodGet, "/api/admin/me", token, nil, &user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testAdmin, user.Username)
	assert.NotNil(t, user.LastLogin)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "garbage token", header: "Bearer nope"},
		{name: "wrong scheme", header: "Basic " + token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, env.http.URL+"/api/admin/me", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := env.send(req, "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestMe_InactiveUserRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.login()

	require.NoError(t, env.db.Model(&domain.User{}).Where("username = ?", testAdmin).Update("is_active", false).Error)

	resp := env.do(http.MethodGet, "/api/admin/me", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	env := newTestEnv(t, withRedis(mr))
	token := env.login()

	resp := env.do(http.MethodPost, "/api/admin/logout", token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/me", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a fresh login is unaffected
	resp = env.do(http.MethodGet, "/api/admin/me", env.login(), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/admin/news",
		"/api/admin/applications",
		"/api/admin/feedback",
		"/api/admin/reports",
		"/api/admin/homepage",
		"/api/admin/chat/buttons",
		"/api/admin/chat/messages",
	} {
		resp := env.do(http.MethodGet, path, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}
