package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stadtwache/internal/domain"
	"stadtwache/internal/metrics"
	"stadtwache/internal/util"
	"stadtwache/internal/validation"
)

// loginFailed is the only message a failed login ever produces
const loginFailed = "incorrect username or password"

// unknownUserHash is compared against when the username does not exist, so
// both login failures cost one bcrypt comparison.
var unknownUserHash = sync.OnceValue(func() string {
	hash, err := util.HashPassword("stadtwache-unknown-user")
	if err != nil {
		panic(err)
	}
	return hash
})

var passwordMatches = util.CheckPasswordHash

type contextKey int

const (
	userKey contextKey = iota
	claimsKey
)

// LoginRequest is the body of POST /api/admin/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserFromContext returns the admin authenticated by requireAdmin
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	log := s.log.Named("auth")

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Validate(validation.FormLogin, req); err != nil {
		s.writeError(w, r, err)
		return
	}

	log.Info("login attempt", zap.String("username", req.Username))

	var user domain.User
	if err := s.db.WithContext(r.Context()).Where("username = ?", req.Username).First(&user).Error; err != nil {
		metrics.RecordAuthAttempt(false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			passwordMatches(req.Password, unknownUserHash())
			log.Info("login failed: unknown user", zap.String("username", req.Username))
			s.writeError(w, r, Unauthorized(loginFailed))
			return
		}
		s.writeError(w, r, Internal("failed to load user", err))
		return
	}

	if !passwordMatches(req.Password, user.HashedPassword) || !user.IsActive {
		log.Info("login failed: bad password or inactive account", zap.String("username", req.Username))
		metrics.RecordAuthAttempt(false)
		s.writeError(w, r, Unauthorized(loginFailed))
		return
	}

	token, claims, err := s.tokens.GenerateToken(user.Username)
	if err != nil {
		s.writeError(w, r, Internal("failed to generate token", err))
		return
	}

	now := time.Now()
	if err := s.db.WithContext(r.Context()).Model(&user).Update("last_login", &now).Error; err != nil {
		log.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	log.Info("login successful", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	metrics.RecordAuthAttempt(true)

	writeJSON(w, http.StatusOK, LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.Remaining(claims).Seconds()),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := r.Context().Value(claimsKey).(*util.Claims)
	if err := s.denylist.Revoke(r.Context(), claims.ID, s.tokens.Remaining(claims)); err != nil {
		s.writeError(w, r, Internal("failed to revoke token", err))
		return
	}
	s.log.Named("auth").Info("logout", zap.String("username", claims.Username))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// requireAdmin rejects requests without a valid, unrevoked bearer token of an active admin
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.writeError(w, r, Unauthorized("authorization header required"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			s.writeError(w, r, Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := s.tokens.ValidateToken(parts[1])
		if err != nil {
			s.writeError(w, r, Unauthorized("invalid or expired token"))
			return
		}

		revoked, err := s.denylist.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			s.writeError(w, r, Internal("failed to check token revocation", err))
			return
		}
		if revoked {
			s.writeError(w, r, Unauthorized("token has been revoked"))
			return
		}

		var user domain.User
		if err := s.db.WithContext(r.Context()).Where("username = ?", claims.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.writeError(w, r, Unauthorized("user not found"))
				return
			}
			s.writeError(w, r, Internal("failed to load user", err))
			return
		}
		if !user.IsActive {
			s.writeError(w, r, Unauthorized("user account is inactive"))
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &user)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}
