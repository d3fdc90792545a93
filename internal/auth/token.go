// Package auth manages the persisted session token. The web client keeps
// the JWT in localStorage under a fixed key; here the equivalent is a file
// in the user config dir. The same token backs every REST call (bearer
// header) and the realtime handshake (query parameter).
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StorageKey is the fixed name the token is stored under, matching the
// key the web client uses.
const StorageKey = "jwtToken"

var ErrNoToken = errors.New("no stored token")

// Store reads and writes the session token at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is <user config dir>/hangchat/jwtToken.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "hangchat", StorageKey), nil
}

// Load returns the stored token, or ErrNoToken when none is saved.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// Claims is the slice of the token the client cares about. The server is
// the authority on validity; the client only reads these for display and
// for skipping a connect attempt with a token that is already dead.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes the token's claims without verifying the signature.
// The client has no signing secret; verification happens server-side.
func Inspect(token string) (Claims, error) {
	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &mc); err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// Expired reports whether the token's expiry has passed. A token without
// an exp claim never expires client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
