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

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vihar-s1/bytechef/internal/api"
	"github.com/vihar-s1/bytechef/internal/log"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow HTTP API",
	Long: `Serve the workflow API over HTTP, backed by the local store.

The log level follows changes to the config file without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeStore, err := openLocal()
	if err != nil {
		return err
	}
	defer closeStore()

	handler := api.NewHandler(svc, api.NewMetrics())
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchLogLevel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(log.CatAPI, "API listening", "addr", srv.Addr)
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(log.CatAPI, "Shutting down API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// watchLogLevel applies log.level changes from the config file.
func watchLogLevel() {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		if err := log.SetLevel(level); err != nil {
			log.Warn(log.CatConfig, "Ignoring invalid log level", "file", e.Name, "level", level)
			return
		}
		log.Info(log.CatConfig, "Log level changed", "level", level)
	})
	v.WatchConfig()
}
