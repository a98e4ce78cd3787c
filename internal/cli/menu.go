package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dvinay/custom-search-shortcuts/internal/host"
	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
	"github.com/dvinay/custom-search-shortcuts/internal/tui"
)

// ActivateOptions describe one simulated menu click
type ActivateOptions struct {
	ID        string
	Text      string // selection; empty reads the clipboard
	PageURL   string // active page for add-current-page
	PageTitle string
}

// desktop builds the tab host used by the command line. The management
// surface is printed as an address instead of being opened.
func (a *App) desktop(page menusync.Tab) *host.Desktop {
	return &host.Desktop{
		Browser:          a.Browser,
		Page:             page,
		InternalPrefixes: a.Settings.InternalPrefixes,
		Manage: func(ctx context.Context, params url.Values) error {
			_, err := fmt.Fprintln(a.Out, host.ManagementURL(params))
			return err
		},
	}
}

// buildMenu runs one synchronizer rebuild into an in-memory menu host
func (a *App) buildMenu(ctx context.Context, tabs menusync.TabHost) (*menusync.Synchronizer, *menu.Tree, error) {
	menuHost := tui.NewMenuHost()
	s := menusync.New(a.Store, menuHost, tabs,
		menusync.WithLogger(a.Logger),
		menusync.WithRootTitle(a.Settings.MenuTitle),
	)
	if err := s.Rebuild(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to build menu: %w", err)
	}
	return s, menu.NewTree(menuHost.Nodes()), nil
}

// PrintMenu writes the menu as an outline with the id of every actionable node
func (a *App) PrintMenu(ctx context.Context) error {
	_, tree, err := a.buildMenu(ctx, a.desktop(menusync.Tab{}))
	if err != nil {
		return err
	}
	root, ok := tree.Node(menu.RootID)
	if !ok {
		return fmt.Errorf("menu has no root")
	}
	fmt.Fprintln(a.Out, root.Label)
	printNodes(a.Out, tree, menu.RootID, 1)
	return nil
}

func printNodes(w io.Writer, tree *menu.Tree, parentID string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range tree.Children(parentID) {
		switch {
		case n.Separator:
			fmt.Fprintf(w, "%s%s\n", indent, strings.Repeat("─", 16))
		case n.Actionable:
			fmt.Fprintf(w, "%s%s  [%s]\n", indent, n.Label, n.ID)
		default:
			fmt.Fprintf(w, "%s%s\n", indent, n.Label)
			printNodes(w, tree, n.ID, depth+1)
		}
	}
}

// Activate clicks the menu node with the given id, exactly as the
// interactive menu would
func (a *App) Activate(ctx context.Context, opts ActivateOptions) error {
	page := menusync.Tab{URL: opts.PageURL, Title: opts.PageTitle}
	s, tree, err := a.buildMenu(ctx, a.desktop(page))
	if err != nil {
		return err
	}

	node, ok := tree.Node(opts.ID)
	if !ok || !node.Actionable {
		return fmt.Errorf("no actionable menu item %q (see the menu command)", opts.ID)
	}

	return s.HandleActivation(ctx, menusync.Activation{
		ActivatedID:  node.ID,
		ParentID:     node.ParentID,
		SelectedText: host.NewSelection(opts.Text, a.Logger).Text(),
	})
}
