// Package cli implements the scandesk command line client. Every command
// loads the shared configuration, opens the same upload journal the agent
// uses, and talks to the digitization backend directly.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/core"
	"github.com/scandesk/scandesk/internal/identity"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scandesk",
	Short: "Command line client for the ScanDesk digitization service",
	Long: `scandesk uploads scanned documents to the digitization backend,
tracks their processing status, and manages the finalized archive.

Uploads are journaled locally, so interrupted or failed uploads can be
retried, and the status view merges the local journal with the backend's
processed list.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./config.yml or ~/.scandesk/config.yml)")
}

// newApp loads the configuration and opens the journal database.
func newApp() *core.App {
	app, err := core.New(rootCmd.Version, cfgFile)
	if err != nil {
		exitf("Failed to initialize: %v", err)
	}
	return app
}

// identityClient builds a bare provider client for pre-auth operations.
func identityClient(app *core.App) *identity.Client {
	cfg := app.Config()
	timeout := time.Duration(cfg.Backend.Timeout) * time.Second
	return identity.NewClient(cfg.Identity.URL, cfg.Identity.ClientID, timeout)
}

// identitySession builds the token source backed by the on-disk cache.
func identitySession(app *core.App) *identity.Session {
	return identity.NewSession(identityClient(app), identity.NewCache(app.Config().State.Dir))
}

// newSession builds the full client stack: identity tokens, the backend
// client and the upload session. The CLI passes no broadcaster; snapshots
// are printed, not pushed.
func newSession(app *core.App) *session.Session {
	cfg := app.Config()
	timeout := time.Duration(cfg.Backend.Timeout) * time.Second
	client := backend.New(cfg.Backend.URL, timeout, identitySession(app))
	return session.New(store.New(app.DB()), client, cfg, nil)
}

// exitf prints a message to stderr and exits non-zero.
func exitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// exitOnErr exits with a friendly message for the common failure modes.
func exitOnErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, identity.ErrSignedOut) {
		exitf("Not signed in. Run 'scandesk login' first.")
	}
	exitf("Error: %v", err)
}

// promptLine prints a prompt and reads one trimmed line from stdin.
func promptLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

// reportBulkFailures prints per-item failures and exits non-zero when any
// exist.
func reportBulkFailures(failed map[string]string) {
	if len(failed) == 0 {
		return
	}
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(os.Stderr, "%s: %s\n", id, failed[id])
	}
	os.Exit(1)
}
