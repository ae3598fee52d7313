package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/server"
	"github.com/brk3/habitledger/internal/storage/flatfile"
	"github.com/brk3/habitledger/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the HTTP server",
	Long: `The "serve" command opens the configured store, loads the tracker (running
the one-time legacy import when storage.legacy_path is set) and serves the
HTTP API until interrupted. Pending writes are flushed before exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startServer(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func startServer(ctx context.Context) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := tracker.Options{
		Store:         store,
		WeekStart:     cfg.WeekStart,
		Location:      loc,
		DefaultHabits: cfg.DefaultHabits,
		BadgeCapacity: cfg.BadgeCapacity,
	}
	if cfg.Storage.LegacyPath != "" {
		opts.Legacy = flatfile.Open(cfg.Storage.LegacyPath)
	}
	tr := tracker.New(opts)
	unsubscribe := tr.Subscribe(func(e tracker.Event) {
		if e.Kind == tracker.EventPersistFailed {
			logger.Error("Failed to persist tracker state", "namespace", e.Namespace, "error", e.Err)
		}
	})
	defer unsubscribe()

	if err := tr.Load(ctx); err != nil {
		return fmt.Errorf("load tracker: %w", err)
	}

	srv, err := server.New(cfg, tr, store)
	if err != nil {
		_ = tr.Close(context.Background())
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", "addr", cfg.ListenAddr, "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		if cerr := tr.Close(shutdownCtx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("flush tracker: %w", cerr))
		}
		return err
	})
	return g.Wait()
}
