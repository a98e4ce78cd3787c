package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvinay/custom-search-shortcuts/internal/keybinds"
	"github.com/dvinay/custom-search-shortcuts/internal/menu"
)

// keyContext maps the mode to its keybinding context
func (m *Model) keyContext() keybinds.Context {
	switch m.mode {
	case ModeFilter:
		return keybinds.ContextFilter
	case ModeManage:
		return keybinds.ContextManage
	case ModeForm:
		return keybinds.ContextForm
	}
	return keybinds.ContextMenu
}

// handleKey routes a key press through the registry
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	context := m.keyContext()
	action, ok, partial := m.keys.MatchMultiKey(context, msg.String())
	if partial {
		return m, nil
	}

	if ok && action == keybinds.ActionQuitForce {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeFilter:
		return m.handleFilterKey(msg, action, ok)
	case ModeManage:
		return m.handleManageKey(action, ok)
	case ModeForm:
		return m.handleFormKey(msg, action, ok)
	}
	return m.handleMenuKey(action, ok)
}

func (m *Model) handleMenuKey(action keybinds.Action, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}

	switch action {
	case keybinds.ActionQuit:
		return m, tea.Quit

	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)

	case keybinds.ActionNavigateDown:
		m.moveCursor(1)

	case keybinds.ActionGoToTop:
		m.cursor = 0
		m.clampCursor()

	case keybinds.ActionGoToBottom:
		m.cursor = len(m.rows) - 1
		m.clampCursor()

	case keybinds.ActionActivate:
		if r, ok := m.current(); ok {
			m.activate(r)
		}

	case keybinds.ActionExpand:
		if r, ok := m.current(); ok {
			if menu.Parse(r.node.ID).Kind == menu.KindBranch && !m.expanded[r.node.ID] {
				m.expanded[r.node.ID] = true
				m.rebuildRows()
				m.moveCursor(1)
			}
		}

	case keybinds.ActionCollapse:
		m.collapseCurrent()

	case keybinds.ActionOpenFilter:
		m.mode = ModeFilter
		m.filter.SetValue("")
		m.cursor = 0
		m.rebuildRows()
		return m, m.filter.Focus()

	case keybinds.ActionOpenManage:
		m.activate(row{node: menu.Node{ID: menu.ManageID, ParentID: menu.RootID, Actionable: true}, label: menu.ManageLabel})

	case keybinds.ActionRefresh:
		m.selected = m.selection()
		m.statusMsg = "Selection refreshed"
	}

	return m, nil
}

// collapseCurrent closes the highlighted branch, or the branch of the highlighted leaf
func (m *Model) collapseCurrent() {
	r, ok := m.current()
	if !ok {
		return
	}
	branchID := r.node.ID
	if r.depth > 0 {
		branchID = r.node.ParentID
	}
	if !m.expanded[branchID] {
		return
	}
	m.expanded[branchID] = false
	m.rebuildRows()
	for i, rr := range m.rows {
		if rr.node.ID == branchID {
			m.cursor = i
			break
		}
	}
}

func (m *Model) handleFilterKey(msg tea.KeyMsg, action keybinds.Action, ok bool) (tea.Model, tea.Cmd) {
	if ok {
		switch action {
		case keybinds.ActionFilterCancel:
			m.closeFilter()
			return m, nil

		case keybinds.ActionFilterApply:
			r, found := m.current()
			m.closeFilter()
			if found {
				m.activate(r)
			}
			return m, nil

		case keybinds.ActionNavigateUp:
			m.moveCursor(-1)
			return m, nil

		case keybinds.ActionNavigateDown:
			m.moveCursor(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor = 0
	m.rebuildRows()
	return m, cmd
}

func (m *Model) closeFilter() {
	m.filter.Blur()
	m.filter.SetValue("")
	m.mode = ModeMenu
	m.cursor = 0
	m.rebuildRows()
}
