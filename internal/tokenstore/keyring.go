package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
)

const (
	keyringService = "eclipse-cli"
	keyringUser    = "default"
)

// KeyringStore keeps the token in the OS keychain (macOS Keychain, Secret Service,
// Windows Credential Manager) as a single item holding the JSON record.
type KeyringStore struct {
	service string
	user    string
	now     func() time.Time
}

var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore using the default item name.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService, user: keyringUser, now: time.Now}
}

func (s *KeyringStore) Load() (*StoredToken, error) {
	secret, err := keyring.Get(s.service, s.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token from keychain: %w", err)
	}
	return decode([]byte(secret), "keychain")
}

func (s *KeyringStore) Save(resp auth.TokenResponse, serverURL string) (*StoredToken, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("refusing to store an empty access token")
	}
	tok := newStoredToken(resp, serverURL, s.now())
	content, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("encoding token: %w", err)
	}
	if err := keyring.Set(s.service, s.user, string(content)); err != nil {
		return nil, fmt.Errorf("writing token to keychain: %w", err)
	}
	return tok, nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keychain: %w", err)
	}
	return nil
}
