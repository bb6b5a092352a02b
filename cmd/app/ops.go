package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/adapters/api"
	httpadapter "github.com/atvirokodosprendimai/pcforge/internal/adapters/http"
	"github.com/atvirokodosprendimai/pcforge/internal/adapters/httpclient"
	rpcadapter "github.com/atvirokodosprendimai/pcforge/internal/adapters/rpcjson"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the daemon: shared cache over the JSON-RPC socket plus the web console",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "web console listen address (PCFORGE_WEB_ADDR)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := loadConfig(c)
			if v := c.String("addr"); v != "" {
				cfg.WebAddr = v
			}
			log, err := logging.New(cfg.LogLevel, zapcore.InfoLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, store, err := openStore(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			requester := newHTTPRequester(cfg, store, log)
			app := application.NewApp(backendFor(api.New(requester)), store, store, requester, log)
			return runServe(ctx, cfg.WebAddr, cfg.Socket, cfg.APIURL, app, requester, log)
		},
	}
}

// runServe restores the session in the background, so the web console shows
// its loading page until the backend has answered.
func runServe(ctx context.Context, addr, socket, apiURL string, app *application.App, requester *httpclient.Client, log *zap.Logger) error {
	go func() {
		if err := app.Session.Init(ctx); err != nil {
			log.Warn("restore session", zap.Error(err))
		}
		log.Info("session restored", zap.String("state", string(app.Session.State())))
	}()

	rpcSrv, err := rpcadapter.Start(socket, requester, app.Session, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = rpcSrv.Close()
	}()
	log.Info("json-rpc listening", zap.String("socket", "unix://"+socket))

	srv := &http.Server{Addr: addr, Handler: httpadapter.NewRouter(app, apiURL, log), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("web console listening", zap.String("addr", "http://"+addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
