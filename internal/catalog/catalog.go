// Package catalog is the management layer over the configuration store:
// create, edit, reorder and remove templates, variables and environments.
//
// Every mutation fetches a fresh snapshot, applies the change and writes
// back only the keys it touched in one Set.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Id prefixes for generated identifiers
const (
	TemplateIDPrefix    = "custom-search-"
	EnvironmentIDPrefix = "env-"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrInvalid   = errors.New("invalid value")
)

// Manager applies CRUD operations to a store
type Manager struct {
	store  store.Store
	logger *zap.Logger

	// mu serializes read-modify-write cycles within this process
	mu sync.Mutex

	newID func() string
}

// NewManager creates a manager over st
func NewManager(st store.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  st,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Snapshot returns a fresh copy of the whole configuration
func (m *Manager) Snapshot(ctx context.Context) (types.Snapshot, error) {
	snap, err := m.store.Get(ctx)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	return snap, nil
}

// update runs fn against a fresh snapshot and writes back the keys it returns
func (m *Manager) update(ctx context.Context, fn func(*types.Snapshot) (types.Partial, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	p, err := fn(&snap)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, p); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	m.logger.Debug("configuration updated", zap.Any("keys", p.Keys()))
	return nil
}

// FindTemplate looks a template up by id, then by exact name, then by
// case-insensitive name
func FindTemplate(snap types.Snapshot, idOrName string) (*types.Template, error) {
	if t, ok := snap.Template(idOrName); ok {
		return t, nil
	}
	for i := range snap.Templates {
		if snap.Templates[i].Name == idOrName {
			return &snap.Templates[i], nil
		}
	}
	for i := range snap.Templates {
		if strings.EqualFold(snap.Templates[i].Name, strings.TrimSpace(idOrName)) {
			return &snap.Templates[i], nil
		}
	}
	return nil, fmt.Errorf("template %q: %w", idOrName, ErrNotFound)
}

// FindEnvironment looks an environment up by id or by (normalized) name
func FindEnvironment(snap types.Snapshot, idOrName string) (*types.Environment, error) {
	if env, ok := snap.Environment(idOrName); ok {
		return env, nil
	}
	name := types.NormalizeName(idOrName)
	for i := range snap.Environments {
		if snap.Environments[i].Name == name {
			return &snap.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("environment %q: %w", idOrName, ErrNotFound)
}
