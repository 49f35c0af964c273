package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driving"
	"github.com/custodia-labs/ragd/internal/logger"
)

// defaultSettle is how long a file must be quiet before it is ingested.
const defaultSettle = 2 * time.Second

var (
	watchSettle  time.Duration
	watchInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest documents as they appear in the documents directory",
	Long: `Watches the documents directory and ingests supported files when they are
created or written. Changes are batched until the directory has been quiet
for --settle. Files that are removed are not deleted from the vector store.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", defaultSettle, "quiet period before ingesting changes")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest the whole directory before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := settings()
	if err != nil {
		return err
	}
	if err := ensureServices(cmd); err != nil {
		return err
	}

	if watchInitial {
		report, err := ingestService.IngestDir(cmd.Context())
		if err != nil {
			return fmt.Errorf("initial ingest failed: %w", err)
		}
		if err := writeReport(cmd.OutOrStdout(), report, false); err != nil {
			return err
		}
	}

	w := newDocWatcher(ingestService, s.Ingest.DocsDir, s.Ingest.Pattern, watchSettle)
	w.onReport = func(r *domain.IngestReport) {
		_ = writeReport(cmd.OutOrStdout(), r, false)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", s.Ingest.DocsDir)
	return w.Run(cmd.Context())
}

// docWatcher turns filesystem events in a directory tree into watch-mode
// ingestion batches.
type docWatcher struct {
	ingest  driving.IngestService
	dir     string
	pattern string
	settle  time.Duration

	// onReport receives the report of every batch.
	onReport func(*domain.IngestReport)
}

func newDocWatcher(ingest driving.IngestService, dir, pattern string, settle time.Duration) *docWatcher {
	if pattern == "" {
		pattern = "*"
	}
	if settle <= 0 {
		settle = defaultSettle
	}
	return &docWatcher{ingest: ingest, dir: dir, pattern: pattern, settle: settle}
}

// Run watches until ctx is cancelled. Pending changes are dropped on cancellation.
func (w *docWatcher) Run(ctx context.Context) error {
	if !doublestar.ValidatePattern(w.pattern) {
		return fmt.Errorf("%w: pattern %q", domain.ErrInvalidInput, w.pattern)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.dir); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				if err := w.addTree(fw, ev.Name); err != nil {
					logger.Warn("watch %s: %v", ev.Name, err)
				}
				continue
			}
			if path := w.handleFsEvent(ev); path != "" {
				pending[path] = struct{}{}
				timer.Reset(w.settle)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]struct{})
		}
	}
}

// handleFsEvent returns the path to ingest for an event, or "" to ignore it.
func (w *docWatcher) handleFsEvent(ev fsnotify.Event) string {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return ""
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") || !domain.IsSupportedFile(ev.Name) {
		return ""
	}

	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	if ok, err := doublestar.Match(w.pattern, filepath.ToSlash(rel)); err != nil || !ok {
		return ""
	}

	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return ev.Name
}

func (w *docWatcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	logger.Info("ingesting %d changed files", len(paths))
	report, err := w.ingest.IngestPaths(ctx, domain.IngestModeWatch, paths)
	if err != nil {
		logger.Error("watch ingest: %v", err)
	}
	if report != nil && w.onReport != nil {
		w.onReport(report)
	}
}

// addTree watches root and every non-hidden directory below it.
func (w *docWatcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
