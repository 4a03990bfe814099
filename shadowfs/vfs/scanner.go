package vfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"

	"github.com/andronics/shadowfs/shadowfs/layers"
)

// Scanner walks source roots breadth-first with a bounded worker pool and
// turns every reachable entry into a FileInfo. Unreadable directories and
// entries whose stat fails are logged and skipped; a scan never aborts over
// a single bad entry. Symlinks are recorded but never followed into.
type Scanner struct {
	maxWorkers int
	ignoreFile string // per-root ignore file name, "" disables ignore handling
}

// ScanStats summarizes one completed scan.
type ScanStats struct {
	SnapshotID string
	Dirs       int64
	Files      int64
	Skipped    int64
	Duration   time.Duration
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithMaxWorkers overrides the worker pool size.
func WithMaxWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

// WithIgnoreFile honors a gitignore-style file at each source root.
func WithIgnoreFile(name string) ScannerOption {
	return func(s *Scanner) { s.ignoreFile = name }
}

// NewScanner creates a scanner with a worker count sized for I/O bound
// traversal: twice the CPU count, clamped to [4, 32].
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		maxWorkers: min(max(runtime.NumCPU()*2, 4), 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every root and returns the combined snapshot. The context
// bounds the walk; cancellation stops scheduling new directories and returns
// the context error.
func (s *Scanner) Scan(ctx context.Context, roots []string) (layers.Snapshot, ScanStats, error) {
	stats := ScanStats{SnapshotID: uuid.NewString()}
	start := time.Now()

	var files layers.Snapshot
	for _, root := range roots {
		rootFiles, err := s.scanRoot(ctx, root, &stats)
		if err != nil {
			return nil, stats, err
		}
		files = append(files, rootFiles...)
	}

	stats.Duration = time.Since(start)
	slog.Info("scan completed",
		"snapshot_id", stats.SnapshotID,
		"roots", len(roots),
		"dirs", atomic.LoadInt64(&stats.Dirs),
		"files", atomic.LoadInt64(&stats.Files),
		"skipped", atomic.LoadInt64(&stats.Skipped),
		"duration", stats.Duration)
	return files, stats, nil
}

// scanRoot traverses one root level by level, mirroring a BFS: all
// directories of the current depth are read concurrently, their
// subdirectories form the next level.
func (s *Scanner) scanRoot(ctx context.Context, root string, stats *ScanStats) (layers.Snapshot, error) {
	matcher := s.loadIgnore(root)

	var (
		mu    sync.Mutex
		files layers.Snapshot
	)

	currentLevel := []string{root}
	for len(currentLevel) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			nextMu    sync.Mutex
			nextLevel []string
		)

		levelPool := pool.New().WithMaxGoroutines(s.maxWorkers).WithContext(ctx)
		for _, dir := range currentLevel {
			levelPool.Go(func(ctx context.Context) error {
				entries, subdirs := s.readDir(ctx, root, dir, matcher, stats)

				mu.Lock()
				files = append(files, entries...)
				mu.Unlock()

				nextMu.Lock()
				nextLevel = append(nextLevel, subdirs...)
				nextMu.Unlock()
				return nil
			})
		}
		if err := levelPool.Wait(); err != nil {
			return nil, err
		}

		currentLevel = nextLevel
	}

	return files, nil
}

// readDir produces the FileInfo entries of one directory plus the
// subdirectory paths to descend into.
func (s *Scanner) readDir(ctx context.Context, root, dir string, matcher *ignore.GitIgnore, stats *ScanStats) (layers.Snapshot, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("skipping unreadable directory", "path", dir, "error", err)
		atomic.AddInt64(&stats.Skipped, 1)
		return nil, nil
	}

	files := make(layers.Snapshot, 0, len(entries))
	var subdirs []string

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return files, subdirs
		default:
		}

		childPath := filepath.Join(dir, entry.Name())
		if matcher != nil {
			if rel, err := filepath.Rel(root, childPath); err == nil && matcher.MatchesPath(rel) {
				slog.Debug("ignoring entry", "path", childPath)
				continue
			}
		}

		stat, err := entry.Info()
		if err != nil {
			// Entry vanished or became unstatable between readdir and
			// stat; the scan carries on without it.
			slog.Warn("skipping unstatable entry", "path", childPath, "error", err)
			atomic.AddInt64(&stats.Skipped, 1)
			continue
		}

		fi := layers.NewFileInfoFromStat(childPath, root, stat)
		files = append(files, fi)

		if fi.IsDir() {
			atomic.AddInt64(&stats.Dirs, 1)
			subdirs = append(subdirs, childPath)
		} else if fi.IsFile() {
			atomic.AddInt64(&stats.Files, 1)
		}
	}

	return files, subdirs
}

// loadIgnore compiles the root's ignore file when configured and present.
func (s *Scanner) loadIgnore(root string) *ignore.GitIgnore {
	if s.ignoreFile == "" {
		return nil
	}
	path := filepath.Join(root, s.ignoreFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		slog.Warn("failed to compile ignore file", "path", path, "error", err)
		return nil
	}
	return matcher
}
