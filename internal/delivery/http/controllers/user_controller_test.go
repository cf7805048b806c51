package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embervite/internal/domain"
)

func TestUserController_SignUp(t *testing.T) {
	valid := map[string]any{"email": " Ann@Example.com", "username": "ann", "password": "longenough", "name": "Ann"}

	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
	}{
		{"created", valid, nil, http.StatusCreated},
		{"duplicate email", valid, domain.ErrDuplicateEmail, http.StatusConflict},
		{"duplicate username", valid, domain.ErrDuplicateUsername, http.StatusConflict},
		{"short password", map[string]any{"email": "ann@example.com", "username": "ann", "password": "short"}, nil, http.StatusBadRequest},
		{"bad username", map[string]any{"email": "ann@example.com", "username": "a b", "password": "longenough"}, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{
				err:     tt.svcErr,
				user:    &domain.User{ID: "u1", Email: "ann@example.com", Username: "ann"},
				profile: &domain.UserProfile{UserID: "u1", UniqueHash: "abc123"},
			}
			c := NewUserController(testLogger, svc)

			rec := serve(t, "POST /auth/signup", c.SignUp, http.MethodPost, "/auth/signup", tt.body, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "ann@example.com", svc.lastInput.Email)
				data, _ := decodeEnvelope(t, rec)
				var resp ProfileResponse
				require.NoError(t, json.Unmarshal(data, &resp))
				assert.Equal(t, "abc123", resp.Profile.UniqueHash)
			}
		})
	}
}

func TestUserController_SignUp_HidesPasswordHash(t *testing.T) {
	svc := &fakeUserService{
		user:    &domain.User{ID: "u1", PasswordHash: "secret-hash", Salt: "salt"},
		profile: &domain.UserProfile{},
	}
	c := NewUserController(testLogger, svc)

	rec := serve(t, "POST /auth/signup", c.SignUp, http.MethodPost, "/auth/signup",
		map[string]any{"email": "ann@example.com", "username": "ann", "password": "longenough"}, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestUserController_Login(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &fakeUserService{token: "jwt", user: &domain.User{ID: "u1"}}
		c := NewUserController(testLogger, svc)

		rec := serve(t, "POST /auth/login", c.Login, http.MethodPost, "/auth/login",
			map[string]any{"email": "ann@example.com", "password": "longenough"}, "")

		require.Equal(t, http.StatusOK, rec.Code)
		data, _ := decodeEnvelope(t, rec)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		assert.Equal(t, "jwt", resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
	})
	t.Run("bad credentials", func(t *testing.T) {
		c := NewUserController(testLogger, &fakeUserService{err: domain.ErrInvalidCredentials})

		rec := serve(t, "POST /auth/login", c.Login, http.MethodPost, "/auth/login",
			map[string]any{"email": "ann@example.com", "password": "wrong-password"}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("missing password", func(t *testing.T) {
		c := NewUserController(testLogger, &fakeUserService{})
		rec := serve(t, "POST /auth/login", c.Login, http.MethodPost, "/auth/login", map[string]any{"email": "ann@example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserController_GetMe(t *testing.T) {
	svc := &fakeUserService{user: &domain.User{ID: "u1", Username: "ann"}, profile: &domain.UserProfile{UniqueHash: "abc123"}}
	c := NewUserController(testLogger, svc)

	rec := serve(t, "GET /users/me", c.GetMe, http.MethodGet, "/users/me", nil, "u1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, "GET /users/me", c.GetMe, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
