package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
)

// FileStore keeps the token as a JSON file. Writes go to a temporary file in the same
// directory which is then renamed over the record, so readers see either the old or the
// new token, never a partial one.
type FileStore struct {
	path string
	now  func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the location of the token file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*StoredToken, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	return decode(content, s.path)
}

func (s *FileStore) Save(resp auth.TokenResponse, serverURL string) (*StoredToken, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("refusing to store an empty access token")
	}
	tok := newStoredToken(resp, serverURL, s.now())
	content, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding token: %w", err)
	}
	if err := writeFileAtomic(s.path, content, 0600); err != nil {
		return nil, err
	}
	return tok, nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

func decode(content []byte, source string) (*StoredToken, error) {
	var tok StoredToken
	if err := json.Unmarshal(content, &tok); err != nil {
		return nil, fmt.Errorf("parsing token from %s: %w", source, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token from %s has no access_token", source)
	}
	return &tok, nil
}

func writeFileAtomic(path string, content []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary token file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting token file permissions: %w", err)
	}
	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing token file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}
