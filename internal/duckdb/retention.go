package duckdb

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RetentionConfig holds configuration for the alert retention cleaner.
type RetentionConfig struct {
	RetentionDays int
	Interval      time.Duration
	Logger        *zap.Logger
}

// RetentionCleaner periodically purges acknowledged alerts past the retention period.
// Unacknowledged alerts are never purged.
type RetentionCleaner struct {
	store         *Store
	retentionDays int
	interval      time.Duration
	log           *zap.Logger
	done          chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

// NewRetentionCleaner starts a cleaner. Returns nil when retention is 0 (disabled).
func NewRetentionCleaner(store *Store, conf RetentionConfig) *RetentionCleaner {
	if conf.RetentionDays <= 0 {
		return nil
	}
	interval := conf.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rc := &RetentionCleaner{
		store:         store,
		retentionDays: conf.RetentionDays,
		interval:      interval,
		log:           logger,
		done:          make(chan struct{}),
	}

	// Catch up after downtime.
	rc.cleanup()

	rc.wg.Add(1)
	go rc.tickLoop()

	return rc
}

func (rc *RetentionCleaner) tickLoop() {
	defer rc.wg.Done()
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.cleanup()
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) cleanup() {
	cutoff := rc.store.now().Add(-time.Duration(rc.retentionDays) * 24 * time.Hour)

	rows, err := rc.store.DeleteAcknowledgedBefore(cutoff)
	if err != nil {
		rc.log.Error("duckdb: alert retention cleanup failed", zap.Error(err))
		return
	}
	if rows > 0 {
		rc.log.Info("duckdb: purged acknowledged alerts",
			zap.Int64("rows", rows),
			zap.Int("retention_days", rc.retentionDays))
	}
}

// Stop signals the cleaner to stop and waits for it to finish.
func (rc *RetentionCleaner) Stop() {
	rc.stopOnce.Do(func() {
		close(rc.done)
		rc.wg.Wait()
	})
}
