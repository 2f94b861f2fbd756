package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/scandesk/scandesk/internal/assets"
	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/db"
	"github.com/scandesk/scandesk/internal/websocket"
)

// App holds the core components of the application that are shared
// between the agent and the CLI.
type App struct {
	version string
	config  *config.Config
	db      *sql.DB
	wsHub   *websocket.Hub
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the journal database, and running migrations.
// configPath may be empty to use the default search locations.
func New(version, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid journal schema. Close the DB
		// connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		version: version,
		config:  cfg,
		db:      database,
		wsHub:   websocket.NewHub(),
	}, nil
}

// NewFromComponents assembles an App from already-built pieces. Tests use
// this to inject an in-memory database and a quiet hub.
func NewFromComponents(version string, cfg *config.Config, database *sql.DB, hub *websocket.Hub) *App {
	return &App{version: version, config: cfg, db: database, wsHub: hub}
}

func (a *App) Version() string        { return a.version }
func (a *App) Config() *config.Config { return a.config }
func (a *App) DB() *sql.DB            { return a.db }
func (a *App) WsHub() *websocket.Hub  { return a.wsHub }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
