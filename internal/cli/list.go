package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Output formats for the list commands
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ListTemplates prints the templates in menu order
func (a *App) ListTemplates(ctx context.Context, format string) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(snap.Templates))
	for i, t := range snap.Templates {
		rows[i] = []string{t.ID, t.Name, t.URL}
	}
	return a.output(format, snap.Templates, []string{"ID", "NAME", "URL"}, rows)
}

// ListVariables prints the variables with their defaults
func (a *App) ListVariables(ctx context.Context, format string) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(snap.Variables))
	for i, v := range snap.Variables {
		rows[i] = []string{v.Name, v.DefaultValue}
	}
	return a.output(format, snap.Variables, []string{"NAME", "DEFAULT"}, rows)
}

// ListEnvironments prints the environments with their overrides
func (a *App) ListEnvironments(ctx context.Context, format string) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(snap.Environments))
	for i, env := range snap.Environments {
		values := make([]string, len(env.Values))
		for j, v := range env.Values {
			values[j] = v.Key + "=" + v.Value
		}
		rows[i] = []string{env.ID, env.Name, strings.Join(values, " ")}
	}
	return a.output(format, snap.Environments, []string{"ID", "NAME", "VALUES"}, rows)
}

// output writes v as json or yaml, or the rows as a table
func (a *App) output(format string, v any, headers []string, rows [][]string) error {
	switch format {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return highlight(a.Out, string(data)+"\n", "json")

	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		return highlight(a.Out, string(data), "yaml")

	case OutputText, "":
		return writeTable(a.Out, headers, rows)
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
