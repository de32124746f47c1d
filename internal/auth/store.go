package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
)

// FileStore persists the process-wide credential as a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored credential, or nil when the file is absent or unreadable.
func (s *FileStore) Load() *domain.Credential {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil
	}
	return &cred
}

// Save writes the credential to disk. When the payload carries a relative
// expires_in, an absolute expires_at is computed from now; when it omits a
// refresh_token, the previously stored one is carried forward (refresh responses
// commonly omit it).
func (s *FileStore) Save(cred *domain.Credential, now time.Time) error {
	if cred.ExpiresIn > 0 {
		cred.ExpiresAt = now.Add(time.Duration(cred.ExpiresIn) * time.Second)
	}
	if cred.RefreshToken == "" {
		if prev := s.Load(); prev != nil {
			cred.RefreshToken = prev.RefreshToken
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create token dir: %w", err)
		}
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}
