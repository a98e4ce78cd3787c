package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// AddEnvironment creates an empty environment with a normalized, unique name
func (m *Manager) AddEnvironment(ctx context.Context, name string) (types.Environment, error) {
	env := types.Environment{
		ID:     EnvironmentIDPrefix + m.newID(),
		Name:   types.NormalizeName(name),
		Values: []types.EnvValue{},
	}
	if env.Name == "" {
		return types.Environment{}, fmt.Errorf("environment name is required: %w", ErrInvalid)
	}

	err := m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		if err := checkEnvironmentName(snap, env.Name, ""); err != nil {
			return types.Partial{}, err
		}
		environments := append(snap.Environments, env)
		return types.Partial{Environments: &environments}, nil
	})
	if err != nil {
		return types.Environment{}, err
	}

	m.logger.Info("environment added", zap.String("id", env.ID), zap.String("name", env.Name))
	return env, nil
}

// RenameEnvironment changes an environment's name, keeping it unique
func (m *Manager) RenameEnvironment(ctx context.Context, id, name string) error {
	name = types.NormalizeName(name)
	if name == "" {
		return fmt.Errorf("environment name is required: %w", ErrInvalid)
	}

	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		env, ok := snap.Environment(id)
		if !ok {
			return types.Partial{}, fmt.Errorf("environment %q: %w", id, ErrNotFound)
		}
		if err := checkEnvironmentName(snap, name, id); err != nil {
			return types.Partial{}, err
		}
		env.Name = name
		return types.Partial{Environments: &snap.Environments}, nil
	})
}

// SetEnvironmentValue stores the value of a variable inside an environment,
// replacing any previous value. An empty value makes resolution fall back
// to the variable's default.
func (m *Manager) SetEnvironmentValue(ctx context.Context, envID, variable, value string) error {
	key := types.NormalizeName(variable)
	value = strings.TrimSpace(value)
	if key == "" {
		return fmt.Errorf("variable name is required: %w", ErrInvalid)
	}

	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		env, ok := snap.Environment(envID)
		if !ok {
			return types.Partial{}, fmt.Errorf("environment %q: %w", envID, ErrNotFound)
		}
		if _, ok := snap.Variable(key); !ok {
			return types.Partial{}, fmt.Errorf("variable %s: %w", key, ErrNotFound)
		}

		for i := range env.Values {
			if env.Values[i].Key == key {
				env.Values[i].Value = value
				return types.Partial{Environments: &snap.Environments}, nil
			}
		}
		env.Values = append(env.Values, types.EnvValue{Key: key, Value: value})
		return types.Partial{Environments: &snap.Environments}, nil
	})
}

// RemoveEnvironment deletes an environment by id
func (m *Manager) RemoveEnvironment(ctx context.Context, id string) error {
	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		for i := range snap.Environments {
			if snap.Environments[i].ID == id {
				environments := append(snap.Environments[:i:i], snap.Environments[i+1:]...)
				return types.Partial{Environments: &environments}, nil
			}
		}
		return types.Partial{}, fmt.Errorf("environment %q: %w", id, ErrNotFound)
	})
}

// checkEnvironmentName rejects a name used by any environment other than exceptID
func checkEnvironmentName(snap *types.Snapshot, name, exceptID string) error {
	for _, env := range snap.Environments {
		if env.Name == name && env.ID != exceptID {
			return fmt.Errorf("environment %s: %w", name, ErrDuplicate)
		}
	}
	return nil
}
