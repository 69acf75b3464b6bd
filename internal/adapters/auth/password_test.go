package auth

import (
	"regexp"
	"strings"
	"testing"

	"showscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(4)
	hexRe := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt)
		assert.False(t, seen[salt], "salt repeated")
		seen[salt] = true
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		salt     string
		password string
		wantErr  bool
	}{
		{name: "match", salt: salt, password: "backstage-pass"},
		{name: "wrong password", salt: salt, password: "front-row", wantErr: true},
		{name: "wrong salt", salt: "00" + salt[2:], password: "backstage-pass", wantErr: true},
	}

	hash, err := h.Hash(salt, "backstage-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Compare(hash, tt.salt, tt.password)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := NewBcryptHasher(4)
	long := strings.Repeat("x", 100)
	hash, err := h.Hash("salt", long)
	require.NoError(t, err)
	require.NoError(t, h.Compare(hash, "salt", long))
	assert.Error(t, h.Compare(hash, "salt", long[:99]+"y"))
}
