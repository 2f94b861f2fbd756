// A NEW file to hold a shared test app setup utility, which simplifies
// session and API tests.

package testutil

import (
	"testing"

	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/core"
	"github.com/scandesk/scandesk/internal/websocket"
)

// TestConfig returns the settings tests rely on: standard scan extensions,
// fast polling tiers and a throwaway state directory.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Backend.Timeout = 5
	cfg.Poll.ListInterval = 30
	cfg.Poll.DetailInterval = 5
	cfg.Poll.BurstInterval = 3
	cfg.Poll.BurstLimit = 40
	cfg.Upload.MaxSizeMB = 50
	cfg.Upload.AllowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "tif", "tiff"}
	cfg.State.Dir = t.TempDir()
	return cfg
}

// SetupTestApp initializes a core.App backed by an in-memory database and
// a running websocket hub.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	hub := websocket.NewHub()
	go hub.Run()
	return core.NewFromComponents("test", TestConfig(t), db, hub)
}
