package cli

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lattice/internal/logger"
)

// watchDebounce coalesces editor write bursts into one re-index.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Watch paths and re-index files on change",
	Long: `Watches the given files or directories and re-indexes a file when it
is created or written. Unchanged saves are skipped by the content hash
check.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ensureServices(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, arg := range args {
		if err := addWatchTargets(watcher, arg); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %d paths. Ctrl-C to stop.\n", len(watcher.WatchList()))

	pending := map[string]*time.Timer{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				// New directories join the watch set.
				if event.Has(fsnotify.Create) {
					if err := addWatchTargets(watcher, event.Name); err != nil {
						logger.Warn("Watch %s: %v", event.Name, err)
					}
				}
				continue
			}

			path := event.Name
			if timer, ok := pending[path]; ok {
				timer.Stop()
			}
			pending[path] = time.AfterFunc(watchDebounce, func() {
				reindexFile(ctx, cmd, path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func reindexFile(ctx context.Context, cmd *cobra.Command, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Read %s: %v", path, err)
		return
	}

	doc, err := indexerService.IndexDocument(ctx, filepath.ToSlash(path), string(content), nil)
	if err != nil {
		cmd.Printf("  %s: %v\n", path, err)
		return
	}
	cmd.Printf("  re-indexed %s (%s)\n", path, doc.ContentHash[:12])
}

// addWatchTargets registers a file, or a directory tree recursively.
func addWatchTargets(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
