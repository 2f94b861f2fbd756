package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scandesk/scandesk/internal/api"
	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/core"
	"github.com/scandesk/scandesk/internal/identity"
	"github.com/scandesk/scandesk/internal/poll"
	"github.com/scandesk/scandesk/internal/session"
	"github.com/scandesk/scandesk/internal/store"
	"github.com/scandesk/scandesk/internal/watcher"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "path to config file (default is ./config.yml or ~/.scandesk/config.yml)")
	flag.Parse()

	// Initialize the core application components
	app, err := core.New(version, *configPath)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()
	cfg := app.Config()

	// --- Journal Recovery ---
	// Uploads that were mid-flight when the last run died can never
	// complete; mark them failed so they can be retried.
	st := store.New(app.DB())
	if n, err := st.ResetInterruptedUploads(); err != nil {
		log.Fatalf("Could not recover the upload journal: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted upload(s) as failed.", n)
	}

	// Assemble the client stack: identity tokens, backend client, session.
	timeout := time.Duration(cfg.Backend.Timeout) * time.Second
	ids := identity.NewSession(
		identity.NewClient(cfg.Identity.URL, cfg.Identity.ClientID, timeout),
		identity.NewCache(cfg.State.Dir),
	)
	client := backend.New(cfg.Backend.URL, timeout, ids)
	sess := session.New(st, client, cfg, app.WsHub())

	// Start the websocket hub so status changes reach the dashboard.
	go app.WsHub().Run()

	// Initial status refresh on startup, in the background so an offline
	// backend does not hold up the dashboard.
	go func() {
		log.Println("Performing initial status refresh...")
		if err := sess.RefreshList(context.Background()); err != nil {
			log.Printf("Warning: initial status refresh failed: %v", err)
		}
	}()

	// Start the polling tiers.
	runner := poll.New(sess, cfg)
	runner.Start()
	defer runner.Stop()

	// Start the inbox watcher when a hot folder is configured.
	if cfg.Inbox.Path != "" {
		w := watcher.New(sess, st, cfg)
		if err := w.Start(); err != nil {
			log.Printf("Warning: could not start inbox watcher: %v", err)
		} else {
			defer w.Stop()
		}
	}

	// Setup the dashboard API server
	server := api.NewServer(app, sess)
	addr := fmt.Sprintf("%s:%d", cfg.Dashboard.Bind, cfg.Dashboard.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting dashboard server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down agent...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Agent exiting.")
}
