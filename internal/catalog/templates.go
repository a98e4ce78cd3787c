package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// AddTemplate appends a template. Name and URL are trimmed and required.
func (m *Manager) AddTemplate(ctx context.Context, name, url string) (types.Template, error) {
	t := types.Template{
		ID:   TemplateIDPrefix + m.newID(),
		Name: strings.TrimSpace(name),
		URL:  strings.TrimSpace(url),
	}
	if t.Name == "" || t.URL == "" {
		return types.Template{}, fmt.Errorf("template name and url are required: %w", ErrInvalid)
	}

	err := m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		templates := append(snap.Templates, t)
		return types.Partial{Templates: &templates}, nil
	})
	if err != nil {
		return types.Template{}, err
	}

	m.logger.Info("template added", zap.String("id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// UpdateTemplate changes a template's name and URL. Empty values keep the
// current ones.
func (m *Manager) UpdateTemplate(ctx context.Context, id, name, url string) error {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)

	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		t, ok := snap.Template(id)
		if !ok {
			return types.Partial{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
		}
		if name != "" {
			t.Name = name
		}
		if url != "" {
			t.URL = url
		}
		return types.Partial{Templates: &snap.Templates}, nil
	})
}

// RemoveTemplate deletes a template by id
func (m *Manager) RemoveTemplate(ctx context.Context, id string) error {
	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		for i := range snap.Templates {
			if snap.Templates[i].ID == id {
				templates := append(snap.Templates[:i:i], snap.Templates[i+1:]...)
				return types.Partial{Templates: &templates}, nil
			}
		}
		return types.Partial{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
	})
}

// MoveTemplate shifts a template by delta positions, clamped to the list
// bounds. Menu order follows template order.
func (m *Manager) MoveTemplate(ctx context.Context, id string, delta int) error {
	return m.update(ctx, func(snap *types.Snapshot) (types.Partial, error) {
		from := -1
		for i := range snap.Templates {
			if snap.Templates[i].ID == id {
				from = i
				break
			}
		}
		if from < 0 {
			return types.Partial{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
		}

		to := from + delta
		if to < 0 {
			to = 0
		}
		if to > len(snap.Templates)-1 {
			to = len(snap.Templates) - 1
		}

		t := snap.Templates[from]
		templates := append(snap.Templates[:from:from], snap.Templates[from+1:]...)
		templates = append(templates[:to], append([]types.Template{t}, templates[to:]...)...)
		return types.Partial{Templates: &templates}, nil
	})
}
