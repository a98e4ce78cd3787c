package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// AddVariable stores a new variable. The name is normalized before the
// uniqueness check; a default value is required.
func (m *Manager) AddVariable(ctx context.Context, name, defaultValue string) (types.Variable, error) {
	v := types.Variable{
		Name:         types.NormalizeName(name),
		DefaultValue: strings.TrimSpace(defaultValue),
	}
	if v.Name == "" || v.DefaultValue == "" {
		return types.Variable{}, fmt.Errorf("variable name and default value are required: %w", ErrInvalid)
	}

	err := m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		if _, exists := snap.Variable(v.Name); exists {
			return types.Partial{}, fmt.Errorf("variable %s: %w", v.Name, ErrDuplicate)
		}
		variables := append(snap.Variables, v)
		return types.Partial{Variables: &variables}, nil
	})
	if err != nil {
		return types.Variable{}, err
	}

	m.logger.Info("variable added", zap.String("name", v.Name))
	return v, nil
}

// UpdateVariable renames a variable and sets its default. Environment
// values stored under the old name move to the new one.
func (m *Manager) UpdateVariable(ctx context.Context, oldName, newName, defaultValue string) error {
	oldName = types.NormalizeName(oldName)
	newName = types.NormalizeName(newName)
	defaultValue = strings.TrimSpace(defaultValue)
	if newName == "" || defaultValue == "" {
		return fmt.Errorf("variable name and default value are required: %w", ErrInvalid)
	}

	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		v, ok := snap.Variable(oldName)
		if !ok {
			return types.Partial{}, fmt.Errorf("variable %s: %w", oldName, ErrNotFound)
		}
		if newName != oldName {
			if _, exists := snap.Variable(newName); exists {
				return types.Partial{}, fmt.Errorf("variable %s: %w", newName, ErrDuplicate)
			}
		}
		v.Name = newName
		v.DefaultValue = defaultValue

		if newName == oldName {
			return types.Partial{Variables: &snap.Variables}, nil
		}
		for i := range snap.Environments {
			for j := range snap.Environments[i].Values {
				if snap.Environments[i].Values[j].Key == oldName {
					snap.Environments[i].Values[j].Key = newName
				}
			}
		}
		return types.Partial{Variables: &snap.Variables, Environments: &snap.Environments}, nil
	})
}

// RemoveVariable deletes a variable and its value in every environment
func (m *Manager) RemoveVariable(ctx context.Context, name string) error {
	name = types.NormalizeName(name)

	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		variables := make([]types.Variable, 0, len(snap.Variables))
		for _, v := range snap.Variables {
			if v.Name != name {
				variables = append(variables, v)
			}
		}
		if len(variables) == len(snap.Variables) {
			return types.Partial{}, fmt.Errorf("variable %s: %w", name, ErrNotFound)
		}

		for i := range snap.Environments {
			values := make([]types.EnvValue, 0, len(snap.Environments[i].Values))
			for _, ev := range snap.Environments[i].Values {
				if ev.Key != name {
					values = append(values, ev)
				}
			}
			snap.Environments[i].Values = values
		}
		return types.Partial{Variables: &variables, Environments: &snap.Environments}, nil
	})
}
