package vfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andronics/shadowfs/shadowfs/layers"
)

// Manager owns the source roots, the current scanned snapshot and the named
// layer registry. It performs scanning, dispatches full index rebuilds, and
// routes virtual paths to the addressed layer by their first segment.
//
// Writers (AddSource, ScanSources, RebuildIndexes, AddLayer, RemoveLayer,
// ClearAll) are expected to run serialized by the caller; ResolvePath and
// ListDirectory are pure reads and safe from any number of goroutines, since
// every layer publishes a fully built index before a rebuild returns.
type Manager struct {
	mu        sync.RWMutex
	sources   []string
	registry  map[string]layers.VirtualLayer
	files     layers.Snapshot
	realpaths *layers.RealPathIndex

	scanner    *Scanner
	lastScan   time.Time
	lastScanID string
}

// Stats is the O(1) counter surface consumed by filesystem adapters.
type Stats struct {
	SourceCount int
	LayerCount  int
	FileCount   int
	LastScan    time.Time
	LastScanID  string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithScanner substitutes a custom-configured scanner.
func WithScanner(s *Scanner) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.scanner = s
		}
	}
}

// NewManager creates an empty manager with a default scanner.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:  make(map[string]layers.VirtualLayer),
		realpaths: layers.NewRealPathIndex(),
		scanner:   NewScanner(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSource registers a real directory to scan. The path must exist and be a
// directory; re-adding an already registered path is silently ignored.
func (m *Manager) AddSource(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving source %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotExist, abs)
		}
		return fmt.Errorf("accessing source %s: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceNotDir, abs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sources {
		if existing == abs {
			return nil
		}
	}
	m.sources = append(m.sources, abs)
	slog.Info("source added", "path", abs, "sources", len(m.sources))
	return nil
}

// Sources returns a copy of the registered source roots in insertion order.
func (m *Manager) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.sources))
	copy(out, m.sources)
	return out
}

// ScanSources walks every source root and replaces the file snapshot
// wholesale - never merged - so the next rebuild hands every layer an
// identical view. The real-path index is rebuilt from the same snapshot.
func (m *Manager) ScanSources(ctx context.Context) (ScanStats, error) {
	m.mu.RLock()
	roots := make([]string, len(m.sources))
	copy(roots, m.sources)
	m.mu.RUnlock()

	files, stats, err := m.scanner.Scan(ctx, roots)
	if err != nil {
		return stats, fmt.Errorf("scanning sources: %w", err)
	}

	m.mu.Lock()
	m.files = files
	m.lastScan = time.Now()
	m.lastScanID = stats.SnapshotID
	m.mu.Unlock()

	m.realpaths.Rebuild(files)
	return stats, nil
}

// AddLayer registers a layer under its own name.
func (m *Manager) AddLayer(layer layers.VirtualLayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := layer.Name()
	if _, exists := m.registry[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLayer, name)
	}
	m.registry[name] = layer
	slog.Info("layer added", "name", name, "layers", len(m.registry))
	return nil
}

// RemoveLayer unregisters a layer by name.
func (m *Manager) RemoveLayer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.registry[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	delete(m.registry, name)
	slog.Info("layer removed", "name", name, "layers", len(m.registry))
	return nil
}

// GetLayer returns the layer registered under name.
func (m *Manager) GetLayer(name string) (layers.VirtualLayer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layer, exists := m.registry[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	return layer, nil
}

// ListLayers returns the sorted names of all registered layers.
func (m *Manager) ListLayers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RebuildIndexes hands the current snapshot to every registered layer. The
// layers are independent, so rebuild order does not affect the result; an
// empty snapshot yields empty indexes, not an error.
func (m *Manager) RebuildIndexes() {
	m.mu.RLock()
	files := m.files
	active := make([]layers.VirtualLayer, 0, len(m.registry))
	for _, layer := range m.registry {
		active = append(active, layer)
	}
	m.mu.RUnlock()

	for _, layer := range active {
		layer.BuildIndex(files)
	}
	slog.Info("indexes rebuilt", "layers", len(active), "files", len(files))
}

// ResolvePath routes a full virtual path to the addressed layer. An empty
// path, an unknown layer, or a bare layer name with no remainder resolves to
// nothing - a layer can never resolve as a file itself.
func (m *Manager) ResolvePath(virtualPath string) (string, bool) {
	name, remainder, found := strings.Cut(strings.Trim(virtualPath, "/"), "/")
	if name == "" || !found || remainder == "" {
		return "", false
	}

	m.mu.RLock()
	layer, exists := m.registry[name]
	m.mu.RUnlock()
	if !exists {
		return "", false
	}
	return layer.Resolve(remainder)
}

// ListDirectory lists the virtual root (sorted layer names) or delegates the
// remainder to the addressed layer. Unknown layers yield an empty slice.
func (m *Manager) ListDirectory(subpath string) []string {
	trimmed := strings.Trim(subpath, "/")
	if trimmed == "" {
		return m.ListLayers()
	}

	name, remainder, _ := strings.Cut(trimmed, "/")

	m.mu.RLock()
	layer, exists := m.registry[name]
	m.mu.RUnlock()
	if !exists {
		return []string{}
	}
	return layer.ListDirectory(remainder)
}

// FindByRealPath reverse-maps an absolute real path to its snapshot entry.
func (m *Manager) FindByRealPath(realPath string) (*layers.FileInfo, bool) {
	return m.realpaths.Lookup(realPath)
}

// FilesUnder returns the snapshot entries below a real directory prefix.
func (m *Manager) FilesUnder(prefix string) []*layers.FileInfo {
	return m.realpaths.UnderPrefix(prefix)
}

// Stats returns O(1) counts of sources, layers and scanned files.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		SourceCount: len(m.sources),
		LayerCount:  len(m.registry),
		FileCount:   len(m.files),
		LastScan:    m.lastScan,
		LastScanID:  m.lastScanID,
	}
}

// ClearAll resets sources, layers, snapshot and the real-path index.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	m.sources = nil
	m.registry = make(map[string]layers.VirtualLayer)
	m.files = nil
	m.lastScan = time.Time{}
	m.lastScanID = ""
	m.mu.Unlock()

	m.realpaths.Clear()
	slog.Info("manager cleared")
}
