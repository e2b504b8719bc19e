package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gennadis/projectchat/internal/config"
	"github.com/gennadis/projectchat/internal/devserver"
	"github.com/gennadis/projectchat/internal/logging"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo"
)

func main() {
	var (
		configPath string
		addr       string
		seed       bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "devserver",
		Short:        "Run an in-memory project chat backend",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, verbose, os.Stderr)
			if addr != "" {
				cfg.DevServer.Addr = addr
			}
			return serve(cmd.Context(), cfg, seed)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides devserver.addr)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create a demo account with one project")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatalf("devserver: %s", err)
	}
}

func serve(ctx context.Context, cfg *config.Config, seed bool) error {
	server := devserver.New(devserver.Options{LoginRatePerMinute: cfg.DevServer.LoginRatePerMinute})
	if seed {
		if err := seedDemo(server); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.DevServer.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Dev server listening", slog.String("addr", cfg.DevServer.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func seedDemo(server *devserver.Server) error {
	userID, err := server.AddUser("Demo", demoEmail, demoPassword)
	if err != nil {
		return err
	}
	p := server.AddProject(userID, "Demo project", "Seeded by --seed")
	slog.Info("Seeded demo account",
		slog.String("email", demoEmail),
		slog.Int64("project_id", p.ID),
	)
	return nil
}
