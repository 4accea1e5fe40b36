package tokenstore

import (
	"fmt"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
)

// Open returns the Store selected by the auth configuration.
func Open(cfg config.AuthConfig) (Store, error) {
	switch cfg.TokenStorage {
	case "", config.TokenStorageFile:
		return NewFileStore(cfg.TokenFile), nil
	case config.TokenStorageKeychain:
		return NewKeyringStore(), nil
	default:
		return nil, fmt.Errorf("unknown token storage %q", cfg.TokenStorage)
	}
}

// Location describes where a store keeps the token, for user-facing messages.
func Location(s Store) string {
	switch st := s.(type) {
	case *FileStore:
		return st.Path()
	case *KeyringStore:
		return fmt.Sprintf("OS keychain (%s/%s)", st.service, st.user)
	default:
		return "token store"
	}
}
