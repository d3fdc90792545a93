package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", StorageKey))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("tok-abc"))
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tok := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	claims, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestInspect_NoExpiryNeverExpires(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "user-1"})

	claims, err := Inspect(tok)
	require.NoError(t, err)
	assert.False(t, claims.Expired(time.Now().Add(100*365*24*time.Hour)))
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.Error(t, err)
}
