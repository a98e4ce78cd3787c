// Package transfer moves the configuration triple in and out of the store
// as JSON (comments allowed on import) or YAML documents.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// legacyTemplatesKey is the name older exports used for templates
const legacyTemplatesKey = "urls"

// ErrInvalidFormat is returned when an imported document does not carry the
// three collections as arrays
var ErrInvalidFormat = errors.New("invalid import format")

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Export writes the snapshot to w
func Export(w io.Writer, snap types.Snapshot, format string) error {
	snap.Normalize()

	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		return enc.Close()
	}

	return fmt.Errorf("unsupported export format: %s", format)
}

// Import reads a document and returns the snapshot it describes.
// Variable and environment names are normalized.
func Import(r io.Reader, format string) (types.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("failed to read import: %w", err)
	}

	var raw map[string]json.RawMessage
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}

	case FormatYAML:
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		// Re-encode so both formats share the JSON validation below
		converted, err := json.Marshal(doc)
		if err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := json.Unmarshal(converted, &raw); err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}

	default:
		return types.Snapshot{}, fmt.Errorf("unsupported import format: %s", format)
	}

	if _, ok := raw[string(types.KeyTemplates)]; !ok {
		if legacy, ok := raw[legacyTemplatesKey]; ok {
			raw[string(types.KeyTemplates)] = legacy
		}
	}

	var snap types.Snapshot
	for _, key := range types.AllKeys {
		value, ok := raw[string(key)]
		if !ok || !isArray(value) {
			return types.Snapshot{}, fmt.Errorf("%w: %s must be an array", ErrInvalidFormat, key)
		}
		var target any
		switch key {
		case types.KeyTemplates:
			target = &snap.Templates
		case types.KeyVariables:
			target = &snap.Variables
		case types.KeyEnvironments:
			target = &snap.Environments
		}
		if err := json.Unmarshal(value, target); err != nil {
			return types.Snapshot{}, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, key, err)
		}
	}

	normalizeNames(&snap)
	if err := validate(snap); err != nil {
		return types.Snapshot{}, err
	}
	snap.Normalize()
	return snap, nil
}

// Apply replaces the whole configuration with snap in one write
func Apply(ctx context.Context, st store.Store, snap types.Snapshot) error {
	if err := st.Set(ctx, types.FullPartial(snap)); err != nil {
		return fmt.Errorf("failed to save imported configuration: %w", err)
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func normalizeNames(snap *types.Snapshot) {
	for i := range snap.Variables {
		snap.Variables[i].Name = types.NormalizeName(snap.Variables[i].Name)
	}
	for i := range snap.Environments {
		snap.Environments[i].Name = types.NormalizeName(snap.Environments[i].Name)
		for j := range snap.Environments[i].Values {
			v := &snap.Environments[i].Values[j]
			v.Key = types.NormalizeName(v.Key)
		}
	}
}

// validate rejects documents whose ids or normalized names collide, or
// whose ids cannot be encoded into menu identities
func validate(snap types.Snapshot) error {
	templateIDs := make(map[string]bool, len(snap.Templates))
	for _, t := range snap.Templates {
		if !menu.ValidTemplateID(t.ID) {
			return fmt.Errorf("%w: invalid template id %q", ErrInvalidFormat, t.ID)
		}
		if templateIDs[t.ID] {
			return fmt.Errorf("%w: duplicate template id %q", ErrInvalidFormat, t.ID)
		}
		templateIDs[t.ID] = true
	}

	variables := make(map[string]bool, len(snap.Variables))
	for _, v := range snap.Variables {
		if v.Name == "" {
			return fmt.Errorf("%w: variable without a name", ErrInvalidFormat)
		}
		if variables[v.Name] {
			return fmt.Errorf("%w: duplicate variable %s", ErrInvalidFormat, v.Name)
		}
		variables[v.Name] = true
	}

	envIDs := make(map[string]bool, len(snap.Environments))
	envNames := make(map[string]bool, len(snap.Environments))
	for _, env := range snap.Environments {
		if !menu.ValidEnvironmentID(env.ID) {
			return fmt.Errorf("%w: invalid environment id %q", ErrInvalidFormat, env.ID)
		}
		if envIDs[env.ID] {
			return fmt.Errorf("%w: duplicate environment id %q", ErrInvalidFormat, env.ID)
		}
		envIDs[env.ID] = true
		if envNames[env.Name] {
			return fmt.Errorf("%w: duplicate environment %s", ErrInvalidFormat, env.Name)
		}
		envNames[env.Name] = true

		keys := make(map[string]bool, len(env.Values))
		for _, v := range env.Values {
			if keys[v.Key] {
				return fmt.Errorf("%w: environment %s sets %s twice", ErrInvalidFormat, env.Name, v.Key)
			}
			keys[v.Key] = true
		}
	}
	return nil
}
