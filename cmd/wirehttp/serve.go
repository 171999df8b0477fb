package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/admin"
	"github.com/sagarc03/wirehttp/api"
	"github.com/sagarc03/wirehttp/config"
	"github.com/sagarc03/wirehttp/dispatch"
	"github.com/sagarc03/wirehttp/filesystem"
	"github.com/sagarc03/wirehttp/router"
	"github.com/sagarc03/wirehttp/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TCP server",
	Long: `Start the wirehttp TCP server. When admin.port is set, an operator
HTTP endpoint with /healthz, /routes and /stats is started alongside.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("directory", "", "working directory for /files (default: ./data, env: WIREHTTP_STORAGE_PATH)")
	serveCmd.Flags().Int("port", 4221, "TCP listen port")
	serveCmd.Flags().String("host", "127.0.0.1", "TCP listen host")
	serveCmd.Flags().Int64("max-conns", 0, "maximum in-flight connections (0 = unbounded)")
	serveCmd.Flags().Int("admin-port", 0, "admin HTTP port (0 = disabled)")

	rootCmd.AddCommand(serveCmd)
}

func buildTable() (*router.Table, error) {
	b := router.NewBuilder()
	if err := api.Register(b); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	return b.Build(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeRoot, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = closeRoot() }()

	table, err := buildTable()
	if err != nil {
		return err
	}

	env := &wirehttp.Env{WorkDir: cfg.Storage.Path, Files: store}
	dispatcher := dispatch.New(&dispatch.Config{
		Encodings:        cfg.Server.Encodings,
		MethodNotAllowed: cfg.Server.MethodNotAllowed,
		MaxHeaderBytes:   cfg.Server.MaxHeaderBytes,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
	}, table, env)

	srv := &server.Server{
		Addr:            cfg.Server.Addr(),
		Handler:         dispatcher,
		MaxConns:        cfg.Server.MaxConns,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	slog.Info("starting server", "addr", srv.Addr, "directory", cfg.Storage.Path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	if cfg.Admin.Port > 0 {
		adminHandler := admin.NewHandler(&admin.HandlerConfig{CORS: cfg.Admin.CORS}, table, srv)
		adminSrv := &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Admin.Port),
			Handler:      adminHandler.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		g.Go(func() error {
			slog.Info("starting admin server", "addr", adminSrv.Addr)
			if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := adminSrv.Shutdown(shutdownCtx); err != nil {
				slog.Error("admin server shutdown error", "err", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped", "stats", srv.Stats())
	return nil
}
