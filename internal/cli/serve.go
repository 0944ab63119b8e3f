package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/trendpulse/trendpulse/internal/web"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregation results over HTTP",
	Long: `Serve runs an initial aggregation, then keeps refreshing on the
configured interval and exposes the latest results over an HTTP API:

  GET  /healthz          liveness check
  GET  /api/v1/trends    latest ranked result
  POST /api/v1/refresh   trigger a run now
  GET  /api/v1/keywords  keyword configuration summary
  GET  /reports/         rendered report files

The keyword file is watched and hot-reloaded on change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&keywordsPath, "keywords", "", "keyword file path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Web.Addr = serveAddr
	}
	if keywordsPath != "" {
		cfg.Report.KeywordsPath = keywordsPath
	}

	log := newLogger()
	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial run so the API has data before the first tick.
	if _, err := app.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial aggregation failed")
	}

	go refreshLoop(ctx, app, cfg.Web.RefreshInterval, log)
	if cfg.Report.KeywordsPath != "" {
		go watchKeywords(ctx, app, cfg.Report.KeywordsPath, log)
	}

	server := web.NewServer(cfg.Web, app, cfg.Report.OutputDir, log)
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// refreshLoop re-runs the aggregation on the configured interval.
func refreshLoop(ctx context.Context, app *App, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// watchKeywords hot-reloads the keyword filter when the file changes. The
// parent directory is watched because editors replace files on save.
func watchKeywords(ctx context.Context, app *App, path string, log zerolog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("keyword watch unavailable")
		return
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("keyword watch unavailable")
		return
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce editor write bursts.
			time.Sleep(100 * time.Millisecond)
			if err := app.ReloadKeywords(); err != nil {
				log.Warn().Err(err).Msg("keyword reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("keyword watch error")
		}
	}
}
