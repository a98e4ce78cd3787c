package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/config"
	"github.com/dvinay/custom-search-shortcuts/internal/transfer"
)

// Export writes the configuration to path, or to the output when path is
// empty or "-". An empty format is guessed from the file extension.
func (a *App) Export(ctx context.Context, path, format string) error {
	if format == "" {
		format = transfer.FormatFromPath(path)
	}

	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := transfer.Export(&buf, snap, format); err != nil {
		return err
	}

	if path == "" || path == "-" {
		return highlight(a.Out, buf.String(), format)
	}
	if err := os.WriteFile(path, buf.Bytes(), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.Out, "Exported %d templates, %d variables, %d environments to %s\n",
		len(snap.Templates), len(snap.Variables), len(snap.Environments), path)
	return nil
}

// Import replaces the whole configuration with the document at path ("-"
// reads stdin)
func (a *App) Import(ctx context.Context, path, format string) error {
	if format == "" {
		format = transfer.FormatFromPath(path)
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open import: %w", err)
		}
		defer f.Close()
		r = f
	}

	snap, err := transfer.Import(r, format)
	if err != nil {
		return err
	}
	if err := transfer.Apply(ctx, a.Store, snap); err != nil {
		return err
	}

	a.Logger.Info("configuration imported", zap.String("path", path))
	fmt.Fprintf(a.Out, "Imported %d templates, %d variables, %d environments\n",
		len(snap.Templates), len(snap.Variables), len(snap.Environments))
	return nil
}

// Show prints the configuration, or the result of a JMESPath query over it
func (a *App) Show(ctx context.Context, query string) error {
	if query == "" {
		return a.Export(ctx, "", transfer.FormatJSON)
	}

	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	result, err := transfer.Query(snap, query)
	if err != nil {
		return err
	}
	return highlight(a.Out, result+"\n", "json")
}
