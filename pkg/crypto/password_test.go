package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	SetCost(bcrypt.MinCost)
	t.Cleanup(func() { SetCost(DefaultCost) })

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))
	assert.False(t, CheckPassword("secret1", "not-a-hash"))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestSetCost_OutOfRange(t *testing.T) {
	t.Cleanup(func() { SetCost(DefaultCost) })

	SetCost(1)
	assert.Equal(t, DefaultCost, cost)
	SetCost(bcrypt.MaxCost + 1)
	assert.Equal(t, DefaultCost, cost)
	SetCost(bcrypt.MinCost)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestNeedsRehash(t *testing.T) {
	t.Cleanup(func() { SetCost(DefaultCost) })
	SetCost(bcrypt.MinCost)
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.False(t, NeedsRehash(hash))
	SetCost(bcrypt.MinCost + 1)
	assert.True(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("garbage"))
}

func TestNewSessionID(t *testing.T) {
	sid, err := NewSessionID()
	require.NoError(t, err)
	assert.Len(t, sid, 43)
	assert.NotContains(t, sid, "=")

	other, err := NewSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, sid, other)
}

func TestErrorBranches(t *testing.T) {
	origBcrypt, origRand := bcryptGenerateFromPassword, randomRead
	t.Cleanup(func() { bcryptGenerateFromPassword, randomRead = origBcrypt, origRand })

	bcryptGenerateFromPassword = func([]byte, int) ([]byte, error) { return nil, errors.New("bcrypt failed") }
	_, err := HashPassword("secret1")
	assert.ErrorContains(t, err, "bcrypt failed")

	randomRead = func([]byte) (int, error) { return 0, errors.New("rand failed") }
	_, err = RandomBytes(4)
	assert.Error(t, err)
	_, err = NewSessionID()
	assert.Error(t, err)
}
