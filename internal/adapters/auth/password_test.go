package auth

import (
	"regexp"
	"strings"
	"testing"

	"embervite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(4)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	salts := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt, "salt should be 64 hex characters")
		salts[salt] = struct{}{}
	}
	assert.Len(t, salts, 5)
}

func TestBcryptHasher_Hash_and_Compare(t *testing.T) {
	h := NewBcryptHasher(4)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{"simple", "my-secret-password"},
		{"longer than bcrypt limit", strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(salt, tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			require.NoError(t, h.Compare(hash, salt, tt.password))
		})
	}
}

func TestBcryptHasher_Compare_mismatch(t *testing.T) {
	h := NewBcryptHasher(4)
	salt1, _ := h.GenerateSalt()
	salt2, _ := h.GenerateSalt()
	hash, err := h.Hash(salt1, "correct")
	require.NoError(t, err)

	assert.ErrorIs(t, h.Compare(hash, salt1, "wrong"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, h.Compare(hash, salt2, "correct"), domain.ErrInvalidCredentials)
}
