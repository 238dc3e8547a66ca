package duckdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/seaguardian/seaguardian/internal/duckdb/migrate"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 30 * time.Second

// Store owns the DuckDB database holding vessels, alerts and catches.
// It implements model.StateProvider and model.FleetWriter.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	log          *zap.Logger
	now          func() time.Time
	QueryTimeout time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithQueryTimeout bounds every query issued by the store.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.QueryTimeout = d
		}
	}
}

// WithLogger sets the logger used for scan and maintenance messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore opens or creates a DuckDB database and applies migrations.
// If dbPath is empty, an in-memory database is used.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:           db,
		dbPath:       dbPath,
		log:          zap.NewNop(),
		now:          time.Now,
		QueryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.QueryTimeout)
	defer cancel()
	applied, err := migrate.NewRunner(db).Run(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, name := range applied {
		s.log.Info("duckdb: applied migration", zap.String("name", name))
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// queryCtx derives a context bounded by the store's query timeout.
func (s *Store) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.QueryTimeout)
}
