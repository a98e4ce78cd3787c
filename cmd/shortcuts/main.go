package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/cli"
	"github.com/dvinay/custom-search-shortcuts/internal/config"
	"github.com/dvinay/custom-search-shortcuts/internal/host"
	"github.com/dvinay/custom-search-shortcuts/internal/keybinds"
	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
	"github.com/dvinay/custom-search-shortcuts/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "Custom search shortcuts - open URL templates with the selected text",
	Long: `Custom search shortcuts turns URL templates into a menu of searches.

A template is a URL with %s where the selected text goes and {{NAME}}
placeholders for variables. Environments override variable values, and
every environment gets its own entry under a template that uses variables.

Run without arguments to start the interactive menu. The selection is read
from the clipboard unless --text is given.

Examples:
  shortcuts                                         # Start interactive menu
  shortcuts template add Jira 'https://{{HOST}}/browse/%s'
  shortcuts variable add HOST jira.example.com
  shortcuts env add dev && shortcuts env set dev HOST jira.dev
  shortcuts open Jira --env dev --text ABC-123      # Open in the browser
  shortcuts resolve 'https://{{HOST}}/%s' --explain
  shortcuts export backup.yaml`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// Global flags
var (
	flagLogLevel  string
	flagLogFormat string
)

// Flags shared by several commands
var (
	flagEnv       string
	flagText      string
	flagOutput    string
	flagFormat    string
	flagPageURL   string
	flagPageTitle string
)

// Command specific flags
var (
	flagDryRun  bool
	flagExplain bool
	flagQuery   string
	flagName    string
	flagURL     string
	flagDefault string
)

// openApp prepares the shared collaborators for a command
func openApp(cmd *cobra.Command, interactive bool) (*cli.App, error) {
	return cli.Open(cmd.Context(), cli.Options{
		LogLevel:  flagLogLevel,
		LogFormat: flagLogFormat,
		LogToFile: interactive,
		Watch:     interactive,
	})
}

// withApp runs fn with an application that is closed afterwards
func withApp(fn func(cmd *cobra.Command, args []string, app *cli.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := app.Close(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args, app)
	}
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu with the id of every entry",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.PrintMenu(cmd.Context())
	}),
}

var activateCmd = &cobra.Command{
	Use:   "activate <menu-id>",
	Short: "Click a menu entry by id (see the menu command)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.Activate(cmd.Context(), cli.ActivateOptions{
			ID:        args[0],
			Text:      flagText,
			PageURL:   flagPageURL,
			PageTitle: flagPageTitle,
		})
	}),
}

var openCmd = &cobra.Command{
	Use:   "open <template>",
	Short: "Resolve a template and open it in the browser",
	Long: `Resolve a template by id or name and open it in the browser.

Without --env, templates that use variables ask for an environment when
running in a terminal and use the variable defaults otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.OpenTemplate(cmd.Context(), cli.OpenOptions{
			Template:    args[0],
			Environment: flagEnv,
			Text:        flagText,
			DryRun:      flagDryRun,
		})
	}),
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <pattern>",
	Short: "Print the URL a pattern resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.Resolve(cmd.Context(), cli.ResolveOptions{
			Pattern:     args[0],
			Environment: flagEnv,
			Text:        flagText,
			Explain:     flagExplain,
		})
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export templates, variables and environments",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return app.Export(cmd.Context(), path, flagFormat)
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the configuration with an exported document (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.Import(cmd.Context(), args[0], flagFormat)
	}),
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration, optionally filtered by a JMESPath query",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		return app.Show(cmd.Context(), flagQuery)
	}),
}

var configPathCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the configuration file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Printf("config:   %s\n", config.ConfigDir)
		fmt.Printf("settings: %s\n", config.SettingsFile)
		fmt.Printf("data:     %s\n", config.GetDataFilePath())
		fmt.Printf("database: %s\n", config.DatabasePath)
		fmt.Printf("keybinds: %s\n", config.KeybindsFile)
		fmt.Printf("log:      %s\n", config.LogFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error), overrides settings")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (console/json), overrides settings")
	rootCmd.Flags().StringVar(&flagText, "text", "", "Selection text (default: clipboard)")
	rootCmd.Flags().StringVar(&flagPageURL, "page-url", "", "Current page URL for 'Add Current Page'")
	rootCmd.Flags().StringVar(&flagPageTitle, "page-title", "", "Current page title for 'Add Current Page'")

	activateCmd.Flags().StringVar(&flagText, "text", "", "Selection text (default: clipboard)")
	activateCmd.Flags().StringVar(&flagPageURL, "page-url", "", "Current page URL for 'Add Current Page'")
	activateCmd.Flags().StringVar(&flagPageTitle, "page-title", "", "Current page title for 'Add Current Page'")

	openCmd.Flags().StringVarP(&flagEnv, "env", "e", "", "Environment id or name")
	openCmd.Flags().StringVar(&flagText, "text", "", "Selection text (default: clipboard)")
	openCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Print the URL without opening it")

	resolveCmd.Flags().StringVarP(&flagEnv, "env", "e", "", "Environment id or name")
	resolveCmd.Flags().StringVar(&flagText, "text", "", "Selection text")
	resolveCmd.Flags().BoolVar(&flagExplain, "explain", false, "Show where each placeholder value comes from")

	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Document format (json/yaml), default from extension")
	importCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Document format (json/yaml), default from extension")
	showCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query")

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(variableCmd())
	rootCmd.AddCommand(envCmd())
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configPathCmd)
}

// runTUI starts the interactive menu
func runTUI(cmd *cobra.Command) (err error) {
	ctx := cmd.Context()

	app, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
	}()

	keys, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return fmt.Errorf("failed to load keybinds: %w", err)
	}

	menuHost := tui.NewMenuHost()
	tabHost := tui.NewTabHost(&host.Desktop{
		Browser:          app.Browser,
		Page:             menusync.Tab{URL: flagPageURL, Title: flagPageTitle},
		InternalPrefixes: app.Settings.InternalPrefixes,
	})
	synchronizer := menusync.New(app.Store, menuHost, tabHost,
		menusync.WithLogger(app.Logger),
		menusync.WithRootTitle(app.Settings.MenuTitle),
	)

	selection := host.NewSelection(flagText, app.Logger)
	model := tui.New(ctx, tui.Options{
		Menu:      menuHost,
		Events:    tabHost.Events(),
		Activator: synchronizer,
		Catalog:   app.Catalog,
		Selection: selection.Text,
		Keys:      keys,
		Logger:    app.Logger,
	})

	app.Logger.Info("starting menu", zap.String("version", version))
	return tui.Run(ctx, model, synchronizer)
}

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"t"},
		Short:   "Manage URL templates",
	}

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a template at the end of the menu",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			t, err := app.Catalog.AddTemplate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Added template %q (%s)\n", t.Name, t.ID)
			return nil
		}),
	}

	edit := &cobra.Command{
		Use:   "edit <template>",
		Short: "Change a template's name or URL",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			id, err := app.TemplateID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Catalog.UpdateTemplate(cmd.Context(), id, flagName, flagURL); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Updated template %s\n", id)
			return nil
		}),
	}
	edit.Flags().StringVar(&flagName, "name", "", "New name")
	edit.Flags().StringVar(&flagURL, "url", "", "New URL pattern")

	rm := &cobra.Command{
		Use:     "rm <template>",
		Aliases: []string{"remove"},
		Short:   "Remove a template",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			id, err := app.TemplateID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Catalog.RemoveTemplate(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Removed template %s\n", id)
			return nil
		}),
	}

	mv := &cobra.Command{
		Use:   "mv <template> <delta>",
		Short: "Move a template up (negative) or down (positive) in the menu",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[1], err)
			}
			id, err := app.TemplateID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.Catalog.MoveTemplate(cmd.Context(), id, delta)
		}),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List templates in menu order",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			return app.ListTemplates(cmd.Context(), flagOutput)
		}),
	}
	ls.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	cmd.AddCommand(add, edit, rm, mv, ls)
	return cmd
}

func variableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "variable",
		Aliases: []string{"var", "v"},
		Short:   "Manage {{NAME}} variables and their defaults",
	}

	add := &cobra.Command{
		Use:   "add <name> <default>",
		Short: "Add a variable",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			v, err := app.Catalog.AddVariable(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Added variable %s\n", v.Name)
			return nil
		}),
	}

	edit := &cobra.Command{
		Use:   "edit <name>",
		Short: "Rename a variable or change its default",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			return app.EditVariable(cmd.Context(), args[0], flagName, flagDefault)
		}),
	}
	edit.Flags().StringVar(&flagName, "name", "", "New name (environment values follow the rename)")
	edit.Flags().StringVar(&flagDefault, "default", "", "New default value")

	rm := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a variable and its environment values",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			return app.Catalog.RemoveVariable(cmd.Context(), args[0])
		}),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List variables",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			return app.ListVariables(cmd.Context(), flagOutput)
		}),
	}
	ls.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	cmd.AddCommand(add, edit, rm, ls)
	return cmd
}

func envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "env",
		Aliases: []string{"environment"},
		Short:   "Manage environments and their variable values",
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an environment",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			env, err := app.Catalog.AddEnvironment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Added environment %s (%s)\n", env.Name, env.ID)
			return nil
		}),
	}

	rename := &cobra.Command{
		Use:   "rename <environment> <name>",
		Short: "Rename an environment",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			id, err := app.EnvironmentID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.Catalog.RenameEnvironment(cmd.Context(), id, args[1])
		}),
	}

	set := &cobra.Command{
		Use:   "set <environment> <variable> <value>",
		Short: "Set a variable's value in an environment",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			id, err := app.EnvironmentID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.Catalog.SetEnvironmentValue(cmd.Context(), id, args[1], args[2])
		}),
	}

	rm := &cobra.Command{
		Use:     "rm <environment>",
		Aliases: []string{"remove"},
		Short:   "Remove an environment",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			id, err := app.EnvironmentID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.Catalog.RemoveEnvironment(cmd.Context(), id)
		}),
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List environments",
		Args:    cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
			return app.ListEnvironments(cmd.Context(), flagOutput)
		}),
	}
	ls.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	cmd.AddCommand(add, rename, set, rm, ls)
	return cmd
}
