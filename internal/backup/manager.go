package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24

	filePrefix = "seaguardian-"
	fileSuffix = ".duckdb"
)

// Manager runs periodic local snapshots and keeps the newest KeepLast copies.
type Manager struct {
	store Snapshotter
	cfg   Config
	log   *zap.Logger
	now   func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewManager initializes the backup manager. It returns nil when backups are disabled.
func NewManager(store Snapshotter, cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.DBPath()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: local-dir is required when backup is enabled")
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create local-dir: %w", err)
	}

	m := newManager(store, cfg)

	// Startup snapshot to reduce recovery point after restarts.
	if err := m.RunOnce(m.ctx); err != nil {
		m.log.Warn("backup: startup snapshot failed", zap.Error(err))
	}

	m.wg.Add(1)
	go m.loop()
	return m, nil
}

func newManager(store Snapshotter, cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:  store,
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(m.ctx); err != nil {
				m.log.Warn("backup: periodic snapshot failed", zap.Error(err))
			}
		case <-m.done:
			return
		}
	}
}

// RunOnce creates one local snapshot and prunes old local copies.
func (m *Manager) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Nanosecond suffix keeps names unique and lexically chronological.
	fileName := filePrefix + m.now().UTC().Format("20060102-150405.000000000") + fileSuffix
	localPath := filepath.Join(m.cfg.LocalDir, fileName)

	if err := m.store.SnapshotTo(localPath); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	m.log.Info("backup: created snapshot", zap.String("path", localPath))

	removed, err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast)
	if err != nil {
		return fmt.Errorf("prune local backups: %w", err)
	}
	if removed > 0 {
		m.log.Debug("backup: pruned old snapshots", zap.Int("removed", removed))
	}
	return nil
}

// Stop terminates the periodic backup loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.once.Do(func() {
		m.cancel()
		close(m.done)
		m.wg.Wait()
	})
}

func pruneLocalBackups(localDir string, keepLast int) (int, error) {
	if keepLast <= 0 {
		return 0, nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return 0, err
	}
	if len(matches) <= keepLast {
		return 0, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	removed := 0
	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
