package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/pcforge/internal/adapters/api"
	sqliteadapter "github.com/atvirokodosprendimai/pcforge/internal/adapters/db/sqlite"
	"github.com/atvirokodosprendimai/pcforge/internal/adapters/httpclient"
	rpcadapter "github.com/atvirokodosprendimai/pcforge/internal/adapters/rpcjson"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/config"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/atvirokodosprendimai/pcforge/internal/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// runtime is everything one CLI invocation needs: config, logger, the local
// store and an application root wired to the chosen transport.
type runtime struct {
	cfg       config.Config
	log       *zap.Logger
	db        *gorm.DB
	store     *sqliteadapter.LocalStore
	requester domain.Requester
	rest      *api.API
	app       *application.App
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "api-url", Usage: "marketplace backend base URL (PCFORGE_API_URL)"},
		&cli.StringFlag{Name: "transport", Usage: "http or uds (PCFORGE_TRANSPORT)"},
		&cli.StringFlag{Name: "socket", Usage: "daemon JSON-RPC socket (PCFORGE_SOCKET)"},
		&cli.StringFlag{Name: "db-path", Usage: "local SQLite database (PCFORGE_DB_PATH)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (PCFORGE_LOG_LEVEL)"},
	}
}

// loadConfig layers command-line flags over the environment.
func loadConfig(c *cli.Command) config.Config {
	cfg := config.Load()
	if v := c.String("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v := c.String("transport"); v != "" {
		cfg.Transport = v
	}
	if v := c.String("socket"); v != "" {
		cfg.Socket = v
	}
	if v := c.String("db-path"); v != "" {
		cfg.DBPath = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func openStore(ctx context.Context, path string) (*gorm.DB, *sqliteadapter.LocalStore, error) {
	db, err := sqliteadapter.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("migrate local store: %w", err)
	}
	return db, sqliteadapter.NewLocalStore(db), nil
}

func backendFor(rest *api.API) application.Backend {
	return application.Backend{
		Auth:   rest.Auth,
		Parts:  rest.Parts,
		Builds: rest.Builds,
		Posts:  rest.Posts,
		Admin:  rest.Admin,
		Files:  rest.Files,
	}
}

func newHTTPRequester(cfg config.Config, tokens domain.TokenStore, log *zap.Logger) *httpclient.Client {
	return httpclient.New(tokens, httpclient.Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.HTTPTimeout,
		TTL:        cfg.CacheTTL,
		MaxEntries: cfg.CacheMaxEntries,
		Logger:     log,
	})
}

// openRuntime wires the CLI and restores the session. With transport=uds the
// calls go through the daemon, which reads the token from the same store.
func openRuntime(ctx context.Context, c *cli.Command) (*runtime, error) {
	cfg := loadConfig(c)
	log, err := logging.New(cfg.LogLevel, zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, store, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var requester domain.Requester
	if cfg.Transport == config.TransportUDS {
		requester = rpcadapter.NewClient(cfg.Socket, log)
	} else {
		requester = newHTTPRequester(cfg, store, log)
	}
	rest := api.New(requester)
	app := application.NewApp(backendFor(rest), store, store, requester, log)
	rt := &runtime{cfg: cfg, log: log, db: db, store: store, requester: requester, rest: rest, app: app}
	if err := app.Session.Init(ctx); err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// withRuntime runs fn with an open runtime and closes it afterwards.
func withRuntime(fn func(ctx context.Context, c *cli.Command, rt *runtime) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		rt, err := openRuntime(ctx, c)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(ctx, c, rt)
	}
}

var errUsage = errors.New("usage error")

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
