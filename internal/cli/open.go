package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/catalog"
	"github.com/dvinay/custom-search-shortcuts/internal/host"
	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/parser"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// OpenOptions select a template and how to resolve it
type OpenOptions struct {
	Template    string // id or name
	Environment string // id or name; empty prompts or uses the defaults
	Text        string // selection; empty reads the clipboard
	DryRun      bool   // print the URL without opening it
}

// OpenTemplate resolves a stored template and opens it in the browser.
// The resolved URL is always printed.
func (a *App) OpenTemplate(ctx context.Context, opts OpenOptions) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}

	t, err := catalog.FindTemplate(snap, opts.Template)
	if err != nil {
		return err
	}

	envID, err := a.pickEnvironment(snap, *t, opts.Environment)
	if err != nil {
		return err
	}

	text := host.NewSelection(opts.Text, a.Logger).Text()
	resolved := parser.ResolveTemplate(*t, envID, snap, text)
	fmt.Fprintln(a.Out, resolved)

	if opts.DryRun {
		return nil
	}
	a.Logger.Info("opening template", zap.String("template", t.ID), zap.String("environment", envID))
	return a.Browser.Open(ctx, resolved)
}

// pickEnvironment maps the flag to an environment id. Without a flag the
// user is asked when the template reads environment values.
func (a *App) pickEnvironment(snap types.Snapshot, t types.Template, flag string) (string, error) {
	if flag != "" {
		env, err := catalog.FindEnvironment(snap, flag)
		if err != nil {
			return "", err
		}
		return env.ID, nil
	}
	if a.Prompt == nil || !menu.EnvironmentSensitive(t, snap.Environments) {
		return "", nil
	}
	return a.Prompt(t.Name, snap.Environments)
}

// ResolveOptions describe an ad-hoc pattern resolution
type ResolveOptions struct {
	Pattern     string
	Environment string
	Text        string
	Explain     bool // list where every placeholder value came from
}

// Resolve prints the URL a pattern resolves to against the stored
// variables and environments
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) error {
	snap, err := a.Catalog.Snapshot(ctx)
	if err != nil {
		return err
	}

	var env *types.Environment
	if opts.Environment != "" {
		env, err = catalog.FindEnvironment(snap, opts.Environment)
		if err != nil {
			return err
		}
	}
	envID := ""
	if env != nil {
		envID = env.ID
	}

	fmt.Fprintln(a.Out, parser.Resolve(opts.Pattern, envID, snap.Variables, snap.Environments, opts.Text))
	if !opts.Explain {
		return nil
	}

	for _, name := range parser.ExtractVariableNames(opts.Pattern) {
		v, ok := snap.Variable(name)
		switch {
		case !ok:
			fmt.Fprintf(a.Out, "  {{%s}}  unknown, kept as is\n", name)
		case env != nil && envValue(env, v.Name) != "":
			fmt.Fprintf(a.Out, "  {{%s}}  %q from environment %s\n", name, envValue(env, v.Name), env.Name)
		default:
			fmt.Fprintf(a.Out, "  {{%s}}  %q default\n", name, v.DefaultValue)
		}
	}
	fmt.Fprintf(a.Out, "  %%s  %q\n", parser.EncodeURIComponent(opts.Text))
	return nil
}

func envValue(env *types.Environment, key string) string {
	value, _ := env.Value(key)
	return value
}
