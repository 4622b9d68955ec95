package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/shamanicca/storefront/internal/domain"
)

// FileStorage keeps the cart item collection as a JSON array in a single file
// under a state directory. The file name is the namespaced storage key; writes
// go through a temp file and rename so a crashed write never leaves a
// truncated payload behind.
type FileStorage struct {
	path string
}

// NewFileStorage constructs file-backed storage rooted at dir for the given
// namespaced key.
func NewFileStorage(dir, key string) (*FileStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cart: file storage directory is required")
	}
	key = sanitizeStorageKey(key)
	if key == "" {
		return nil, errors.New("cart: file storage key is required")
	}
	return &FileStorage{path: filepath.Join(dir, key+".json")}, nil
}

// Read loads and decodes the stored payload. A missing file is StatusEmpty;
// any other read or decode failure is StatusCorrupt. Read never returns an
// error to the caller.
func (s *FileStorage) Read(ctx context.Context) ReadResult {
	if s == nil || s.path == "" {
		return ReadResult{Status: StatusEmpty}
	}
	if err := ctx.Err(); err != nil {
		return ReadResult{Status: StatusCorrupt, Err: err}
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return ReadResult{Status: StatusEmpty}
	}
	if err != nil {
		return ReadResult{Status: StatusCorrupt, Err: err}
	}
	return DecodeItems(raw)
}

// Write persists the full item collection, creating the state directory on
// first use.
func (s *FileStorage) Write(ctx context.Context, items []domain.CartItem) error {
	if s == nil || s.path == "" {
		return errors.New("cart: file storage not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if items == nil {
		items = []domain.CartItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode items: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cart: create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("cart: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cart: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cart: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cart: replace state file: %w", err)
	}
	return nil
}

// sanitizeStorageKey keeps storage keys filesystem-safe.
func sanitizeStorageKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}
