package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/catalog"
	"github.com/dvinay/custom-search-shortcuts/internal/keybinds"
	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeMenu Mode = iota
	ModeFilter
	ModeManage
	ModeForm
)

// Activator receives menu clicks
type Activator interface {
	Activate(a menusync.Activation) bool
}

// Options wires the model to the rest of the program
type Options struct {
	Menu      *MenuHost
	Events    <-chan tea.Msg
	Activator Activator
	Catalog   *catalog.Manager
	Selection func() string
	Keys      *keybinds.Registry
	Logger    *zap.Logger
}

// menuChangedMsg is sent after the synchronizer touched the menu
type menuChangedMsg struct{}

// snapshotMsg carries a fresh configuration for previews and the management screen
type snapshotMsg struct {
	snap types.Snapshot
	err  error
}

// catalogDoneMsg reports the outcome of a management action
type catalogDoneMsg struct {
	status string
	err    error
}

// row is one visible line of the menu
type row struct {
	node  menu.Node
	depth int
	label string
}

// Model represents the TUI state
type Model struct {
	ctx       context.Context
	menuHost  *MenuHost
	events    <-chan tea.Msg
	activator Activator
	catalog   *catalog.Manager
	selection func() string
	keys      *keybinds.Registry
	logger    *zap.Logger

	mode     Mode
	tree     *menu.Tree
	expanded map[string]bool
	rows     []row
	cursor   int
	filter   textinput.Model

	snap     types.Snapshot
	selected string // last selection read, shown in the header

	manage manageState
	form   formState

	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// New creates the model. ctx bounds the management actions it runs.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Keys == nil {
		opts.Keys = keybinds.NewDefaultRegistry()
	}
	if opts.Selection == nil {
		opts.Selection = func() string { return "" }
	}

	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter searches"

	m := &Model{
		ctx:       ctx,
		menuHost:  opts.Menu,
		events:    opts.Events,
		activator: opts.Activator,
		catalog:   opts.Catalog,
		selection: opts.Selection,
		keys:      opts.Keys,
		logger:    opts.Logger,
		expanded:  make(map[string]bool),
		filter:    filter,
		form:      newFormState(),
	}
	m.selected = m.selection()
	m.refreshTree()
	return m
}

// Init starts listening to the menu host and the tab host
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForMenu(),
		waitForEvent(m.events),
		m.loadSnapshot(),
	)
}

// Update handles one message
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case menuChangedMsg:
		m.refreshTree()
		return m, tea.Batch(m.waitForMenu(), m.loadSnapshot())

	case snapshotMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		m.manage.clamp(m.snap)
		return m, nil

	case manageRequestMsg:
		cmd := m.openManage(msg.params)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case openedMsg:
		m.statusMsg = "Opened " + msg.url
		m.errorMsg = ""
		return m, waitForEvent(m.events)

	case catalogDoneMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.statusMsg = msg.status
		m.errorMsg = ""
		return m, m.loadSnapshot()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refreshTree re-reads the node list from the menu host
func (m *Model) refreshTree() {
	if m.menuHost == nil {
		m.tree = menu.NewTree(nil)
	} else {
		m.tree = menu.NewTree(m.menuHost.Nodes())
	}
	m.rebuildRows()
}

// rebuildRows lays out the visible rows for the current mode
func (m *Model) rebuildRows() {
	if m.mode == ModeFilter {
		m.rows = m.filteredRows(m.filter.Value())
	} else {
		m.rows = m.treeRows()
	}
	m.clampCursor()
}

// treeRows walks the tree below the root, expanding open branches
func (m *Model) treeRows() []row {
	var rows []row
	for _, n := range m.tree.Children(menu.RootID) {
		rows = append(rows, row{node: n, label: n.Label})
		if menu.Parse(n.ID).Kind == menu.KindBranch && m.expanded[n.ID] {
			for _, child := range m.tree.Children(n.ID) {
				rows = append(rows, row{node: child, depth: 1, label: child.Label})
			}
		}
	}
	return rows
}

// leafLabel names a leaf together with its branch ("Jira › DEV")
func (m *Model) leafLabel(n menu.Node) string {
	if n.ParentID == menu.RootID || n.ParentID == "" {
		return n.Label
	}
	if parent, ok := m.tree.Node(n.ParentID); ok {
		return fmt.Sprintf("%s › %s", parent.Label, n.Label)
	}
	return n.Label
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	// Separators are never selected
	if len(m.rows) > 0 && m.rows[m.cursor].node.Separator {
		m.moveCursor(1)
	}
}

// moveCursor moves by delta, skipping separators
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	next := m.cursor
	for {
		next += delta
		if next < 0 || next >= len(m.rows) {
			return
		}
		if !m.rows[next].node.Separator {
			m.cursor = next
			return
		}
	}
}

// current returns the highlighted row
func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// activate clicks the highlighted row. Branches toggle locally.
func (m *Model) activate(r row) {
	if r.node.Separator {
		return
	}
	if menu.Parse(r.node.ID).Kind == menu.KindBranch {
		m.expanded[r.node.ID] = !m.expanded[r.node.ID]
		m.rebuildRows()
		return
	}
	if !r.node.Actionable || m.activator == nil {
		return
	}

	m.selected = m.selection()
	a := menusync.Activation{
		ActivatedID:  r.node.ID,
		ParentID:     r.node.ParentID,
		SelectedText: m.selected,
	}
	if !m.activator.Activate(a) {
		m.errorMsg = "Busy, try again"
		return
	}
	m.logger.Debug("menu activated", zap.String("id", r.node.ID))
	m.statusMsg = "Activated " + m.leafLabel(r.node)
	m.errorMsg = ""
}

func (m *Model) loadSnapshot() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	return func() tea.Msg {
		snap, err := m.catalog.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *Model) waitForMenu() tea.Cmd {
	if m.menuHost == nil {
		return nil
	}
	updates := m.menuHost.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return menuChangedMsg{}
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
