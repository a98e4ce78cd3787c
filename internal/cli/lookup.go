package cli

import (
	"context"
	"fmt"

	"github.com/dvinay/custom-search-shortcuts/internal/catalog"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// TemplateID resolves a template id or name
func (a *App) TemplateID(ctx context.Context, idOrName string) (string, error) {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	t, err := catalog.FindTemplate(snap, idOrName)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// EnvironmentID resolves an environment id or name
func (a *App) EnvironmentID(ctx context.Context, idOrName string) (string, error) {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	env, err := catalog.FindEnvironment(snap, idOrName)
	if err != nil {
		return "", err
	}
	return env.ID, nil
}

// EditVariable renames a variable and/or changes its default. Empty
// arguments keep the current value.
func (a *App) EditVariable(ctx context.Context, name, newName, defaultValue string) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	v, ok := snap.Variable(types.NormalizeName(name))
	if !ok {
		return fmt.Errorf("variable %s: %w", types.NormalizeName(name), catalog.ErrNotFound)
	}
	if newName == "" {
		newName = v.Name
	}
	if defaultValue == "" {
		defaultValue = v.DefaultValue
	}
	return a.Catalog.UpdateVariable(ctx, v.Name, newName, defaultValue)
}
