package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	j := NewJWT(secret, "embervite")

	token, err := j.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "embervite", claims.Issuer)
}

func TestJWT_Verify(t *testing.T) {
	j := NewJWT("test-secret", "embervite")
	valid, err := j.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := j.Issue("user-123", "u@example.com", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := NewJWT("other", "embervite").Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewJWT("test-secret", "someone-else").Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr bool
	}{
		{"valid", valid, "user-123", false},
		{"expired", expired, "", true},
		{"wrong secret", otherSecret, "", true},
		{"wrong issuer", otherIssuer, "", true},
		{"garbage", "not-a-jwt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := j.Verify(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
