package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/migrations"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// defaultPollInterval is how often a watching SQLite store checks for
// commits made by other connections
const defaultPollInterval = 500 * time.Millisecond

// SQLite stores each top-level key as one JSON row.
//
// Watch polls PRAGMA data_version on a dedicated connection. When another
// connection has committed, the rows are re-read and listeners hear about
// the keys whose content differs from what this handle last saw.
type SQLite struct {
	db        *sql.DB
	logger    *zap.Logger
	listeners listeners

	mu   sync.Mutex
	last map[types.Key][]byte // canonical JSON per key, nil until Watch

	pollInterval time.Duration

	watchMu   sync.Mutex
	watchConn *sql.Conn
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// queryer is satisfied by both the pool and a dedicated connection
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewSQLite opens (creating if needed) the database at dbPath
func NewSQLite(dbPath string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run database migrations
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLite{db: db, logger: logger, pollInterval: defaultPollInterval}, nil
}

// Get reads the requested keys
func (s *SQLite) Get(ctx context.Context, keys ...types.Key) (types.Snapshot, error) {
	return load(ctx, s.db, keys)
}

func load(ctx context.Context, q queryer, keys []types.Key) (types.Snapshot, error) {
	want := wantKeys(keys)
	var snap types.Snapshot

	rows, err := q.QueryContext(ctx, `SELECT key, value FROM config_kv`)
	if err != nil {
		return snap, fmt.Errorf("failed to load config: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return snap, fmt.Errorf("failed to scan config row: %w", err)
		}
		if !want[types.Key(key)] {
			continue
		}

		var target interface{}
		switch types.Key(key) {
		case types.KeyTemplates:
			target = &snap.Templates
		case types.KeyVariables:
			target = &snap.Variables
		case types.KeyEnvironments:
			target = &snap.Environments
		default:
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return snap, fmt.Errorf("failed to parse config key %s: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("failed to load config: %w", err)
	}

	snap.Normalize()
	return snap, nil
}

// Set writes every key of p in one transaction
func (s *SQLite) Set(ctx context.Context, p types.Partial) error {
	values := map[types.Key]interface{}{}
	if p.Templates != nil {
		values[types.KeyTemplates] = *p.Templates
	}
	if p.Variables != nil {
		values[types.KeyVariables] = *p.Variables
	}
	if p.Environments != nil {
		values[types.KeyEnvironments] = *p.Environments
	}
	if len(values) == 0 {
		return nil
	}

	// Held across the commit so the poller never sees our own write as foreign
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write: %w", err)
	}

	query := `
		INSERT INTO config_kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	timestampStr := time.Now().Local().Format("2006-01-02 15:04:05")

	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, query, string(key), string(data), timestampStr); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit config: %w", err)
	}

	if s.last != nil {
		var written types.Snapshot
		p.Apply(&written)
		written.Normalize()
		current := canonical(written)
		for _, k := range p.Keys() {
			s.last[k] = current[k]
		}
	}

	s.logger.Debug("store written", zap.Any("keys", p.Keys()))
	s.listeners.notify(types.Change{Keys: p.Keys()})
	return nil
}

// OnChange registers a change listener
func (s *SQLite) OnChange(l Listener) func() {
	return s.listeners.add(l)
}

// Watch starts reporting commits made by other connections, including
// other processes, until ctx is done or Close is called
func (s *SQLite) Watch(ctx context.Context) error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watchConn != nil {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open watch connection: %w", err)
	}

	s.mu.Lock()
	version, err := dataVersion(ctx, conn)
	if err == nil {
		var snap types.Snapshot
		snap, err = load(ctx, conn, nil)
		s.last = canonical(snap)
	}
	s.mu.Unlock()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start watching database: %w", err)
	}

	s.watchConn = conn
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.poll(ctx, conn, version, s.stopCh, s.doneCh)

	s.logger.Debug("watching database", zap.Duration("interval", s.pollInterval))
	return nil
}

// poll is the watcher loop
func (s *SQLite) poll(ctx context.Context, conn *sql.Conn, version int64, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case <-ticker.C:
			v, err := dataVersion(ctx, conn)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("failed to poll database", zap.Error(err))
				continue
			}
			if v == version {
				continue
			}
			version = v
			s.reload(ctx, conn)
		}
	}
}

// reload re-reads every row and notifies listeners about changed keys
func (s *SQLite) reload(ctx context.Context, conn *sql.Conn) {
	s.mu.Lock()
	snap, err := load(ctx, conn, nil)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to reload database", zap.Error(err))
		return
	}
	current := canonical(snap)
	var changed []types.Key
	for _, k := range types.AllKeys {
		if !bytes.Equal(current[k], s.last[k]) {
			changed = append(changed, k)
		}
	}
	s.last = current
	s.mu.Unlock()

	if len(changed) > 0 {
		s.logger.Debug("database changed externally", zap.Any("keys", changed))
		s.listeners.notify(types.Change{Keys: changed})
	}
}

// dataVersion changes whenever another connection commits
func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// Close stops the watcher if it is running and closes the database
func (s *SQLite) Close() error {
	s.watchMu.Lock()
	if s.watchConn != nil {
		close(s.stopCh)
		<-s.doneCh
		s.watchConn.Close()
		s.watchConn = nil
	}
	s.watchMu.Unlock()
	return s.db.Close()
}
