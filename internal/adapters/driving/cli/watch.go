package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/logger"
)

// reloadDelay coalesces the bursts of events editors emit on save.
const reloadDelay = 250 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [company...]",
	Short: "Periodically reindex a watchlist of companies",
	Long: `Runs in the foreground and reindexes each company on the configured
interval (watch.interval, default 6h).

Without arguments the watchlist is read from watch.companies in the config
file, and edits to that file are picked up without a restart.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	companies := args
	fromConfig := len(args) == 0 && settingsService != nil
	if fromConfig {
		cfg, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		companies = cfg.Watch.Companies
	}
	if len(companies) == 0 {
		return errors.New("no companies to watch: pass names or set watch.companies in the config file")
	}
	scheduler.SetCompanies(companies)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if fromConfig {
		stop, err := watchConfig(ctx, settingsService.Path(), reloadWatchlist)
		if err != nil {
			logger.Warn("config changes will not be picked up: %v", err)
		} else {
			defer stop()
		}
	}

	cmd.Printf("Watching %d companies. Press Ctrl+C to stop.\n", len(companies))
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func reloadWatchlist() {
	cfg, err := settingsService.Get()
	if err != nil {
		logger.Warn("reload config: %v", err)
		return
	}
	scheduler.SetCompanies(cfg.Watch.Companies)
}

// watchConfig calls onChange after path is written or replaced. The parent
// directory is watched because editors often save by renaming a temp file.
func watchConfig(ctx context.Context, path string, onChange func()) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	var (
		mu      sync.Mutex
		pending *time.Timer
		wg      sync.WaitGroup
	)
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(reloadDelay, onChange)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					logger.Debug("config changed: %s", event)
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		_ = watcher.Close()
		wg.Wait()
		mu.Lock()
		if pending != nil {
			pending.Stop()
		}
		mu.Unlock()
	}, nil
}
