package backup

import (
	"time"

	"go.uber.org/zap"
)

// Config controls periodic snapshots of the fleet database.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int
	Logger   *zap.Logger
}

// Snapshotter is the minimal DB snapshot contract used by Manager.
type Snapshotter interface {
	DBPath() string
	SnapshotTo(dstPath string) error
}
