package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/patrimonio/internal/filex"
)

const tokenFile = "token"

// TokenStore keeps the bearer token in ~/<dir>/token, readable by the
// owner only.
type TokenStore struct {
	path string
}

func NewTokenStore(dirName string) (*TokenStore, error) {
	dir, err := filex.EnsureHomeSubDir(dirName)
	if err != nil {
		return nil, fmt.Errorf("token dir: %w", err)
	}
	return &TokenStore{path: filepath.Join(dir, tokenFile)}, nil
}

// Load returns the saved token, or "" when there is none.
func (s *TokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *TokenStore) Save(token string) error {
	return filex.WritePrivateFile(s.path, []byte(token))
}

// Clear removes the saved token. Clearing an empty store is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
