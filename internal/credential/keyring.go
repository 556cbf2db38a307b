package credential

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/foodbridge/cli/internal/model"
)

const serviceName = "foodbridge"

// Keyring entry names for the persisted session.
const (
	tokenKey    = "api-token"
	identityKey = "identity"
)

// Store persists the bearer token and the serialized identity in the
// system keyring so the session survives process restarts.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore returns a Store backed by the system keyring.
func NewStore() *Store {
	return &Store{open: openKeyring}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/foodbridge/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("foodbridge-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the stored bearer token. A missing entry is not an
// error; it returns the empty string.
func (s *Store) Token() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting stored token: %w", err)
	}

	return string(item.Data), nil
}

// Identity returns the stored profile, or nil when absent or corrupt.
// A corrupt entry is treated as absent so a bad write can never lock
// the user out of bootstrapping.
func (s *Store) Identity() (*model.User, error) {
	ring, err := s.open()
	if err != nil {
		return nil, err
	}

	item, err := ring.Get(identityKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting stored identity: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(item.Data, &user); err != nil {
		return nil, nil
	}

	return &user, nil
}

// SaveSession stores the token and serialized identity together.
func (s *Store) SaveSession(token string, user *model.User) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	if err := ring.Set(keyring.Item{Key: tokenKey, Data: []byte(token)}); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serializing identity: %w", err)
	}
	if err := ring.Set(keyring.Item{Key: identityKey, Data: data}); err != nil {
		return fmt.Errorf("storing identity: %w", err)
	}

	return nil
}

// SaveIdentity refreshes only the serialized identity, keeping the
// stored token as is.
func (s *Store) SaveIdentity(user *model.User) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serializing identity: %w", err)
	}
	if err := ring.Set(keyring.Item{Key: identityKey, Data: data}); err != nil {
		return fmt.Errorf("storing identity: %w", err)
	}

	return nil
}

// Clear removes both entries. Missing entries are ignored so Clear is
// safe to call when nothing is stored.
func (s *Store) Clear() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	for _, key := range []string{tokenKey, identityKey} {
		if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("removing credential %q: %w", key, err)
		}
	}

	return nil
}
