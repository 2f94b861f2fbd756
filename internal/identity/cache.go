package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cache persists a TokenSet as tokens.json under the state directory. The
// file is mode 0600: it holds live credentials.
type Cache struct {
	path string
}

// NewCache returns a token cache rooted at stateDir.
func NewCache(stateDir string) *Cache {
	return &Cache{path: filepath.Join(stateDir, "tokens.json")}
}

// Load reads the cached token set. A missing file is not an error; it
// returns (nil, nil) so callers can treat it as signed-out.
func (c *Cache) Load() (*TokenSet, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}
	var ts TokenSet
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse token cache: %w", err)
	}
	return &ts, nil
}

// Save writes the token set, creating the state directory if needed.
func (c *Cache) Save(ts *TokenSet) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	raw, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// Clear removes the cached tokens. Clearing an empty cache is a no-op.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear token cache: %w", err)
	}
	return nil
}
