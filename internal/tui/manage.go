package tui

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvinay/custom-search-shortcuts/internal/keybinds"
	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// manageSection is a list on the management screen
type manageSection int

const (
	sectionTemplates manageSection = iota
	sectionVariables
	sectionEnvironments
	sectionCount
)

func (s manageSection) String() string {
	switch s {
	case sectionTemplates:
		return "Templates"
	case sectionVariables:
		return "Variables"
	case sectionEnvironments:
		return "Environments"
	}
	return ""
}

// manageState is the cursor on the management screen
type manageState struct {
	section manageSection
	cursor  int
}

// length returns the number of entries in the current section
func (s *manageState) length(snap types.Snapshot) int {
	switch s.section {
	case sectionTemplates:
		return len(snap.Templates)
	case sectionVariables:
		return len(snap.Variables)
	case sectionEnvironments:
		return len(snap.Environments)
	}
	return 0
}

func (s *manageState) clamp(snap types.Snapshot) {
	if n := s.length(snap); s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// formState is the add-template form
type formState struct {
	name  textinput.Model
	url   textinput.Model
	focus int // 0=name, 1=url
}

func newFormState() formState {
	name := textinput.New()
	name.Prompt = "Name: "
	name.Placeholder = "Jira issue"
	name.CharLimit = 200

	u := textinput.New()
	u.Prompt = "URL:  "
	u.Placeholder = "https://{{HOST}}/browse/%s"
	u.CharLimit = 2000

	return formState{name: name, url: u}
}

// openManage shows the management screen. Prefill parameters open the
// add-template form directly.
func (m *Model) openManage(params url.Values) tea.Cmd {
	m.closeFilter()
	m.mode = ModeManage
	m.manage = manageState{}

	name := params.Get(menusync.PrefillNameParam)
	pageURL := params.Get(menusync.PrefillURLParam)
	if name == "" && pageURL == "" {
		return m.loadSnapshot()
	}
	return tea.Batch(m.openForm(name, pageURL), m.loadSnapshot())
}

func (m *Model) openForm(name, pageURL string) tea.Cmd {
	m.mode = ModeForm
	m.form.name.SetValue(name)
	m.form.url.SetValue(pageURL)
	m.form.focus = 0
	m.form.url.Blur()
	return m.form.name.Focus()
}

func (m *Model) handleManageKey(action keybinds.Action, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeMenu
		m.rebuildRows()

	case keybinds.ActionNavigateUp:
		if m.manage.cursor > 0 {
			m.manage.cursor--
		}

	case keybinds.ActionNavigateDown:
		if m.manage.cursor < m.manage.length(m.snap)-1 {
			m.manage.cursor++
		}

	case keybinds.ActionNextSection:
		m.manage.section = (m.manage.section + 1) % sectionCount
		m.manage.cursor = 0

	case keybinds.ActionAddTemplate:
		return m, m.openForm("", "")

	case keybinds.ActionDelete:
		return m, m.deleteSelected()

	case keybinds.ActionMoveUp:
		return m, m.moveSelected(-1)

	case keybinds.ActionMoveDown:
		return m, m.moveSelected(1)
	}

	return m, nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg, action keybinds.Action, ok bool) (tea.Model, tea.Cmd) {
	if ok {
		switch action {
		case keybinds.ActionTextCancel:
			m.form.name.Blur()
			m.form.url.Blur()
			m.mode = ModeManage
			return m, nil

		case keybinds.ActionNextField:
			m.form.focus = 1 - m.form.focus
			if m.form.focus == 0 {
				m.form.url.Blur()
				return m, m.form.name.Focus()
			}
			m.form.name.Blur()
			return m, m.form.url.Focus()

		case keybinds.ActionTextSubmit:
			return m, m.submitForm()
		}
	}

	var cmd tea.Cmd
	if m.form.focus == 0 {
		m.form.name, cmd = m.form.name.Update(msg)
	} else {
		m.form.url, cmd = m.form.url.Update(msg)
	}
	return m, cmd
}

// submitForm saves the template and returns to the management screen
func (m *Model) submitForm() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	name := m.form.name.Value()
	pageURL := m.form.url.Value()
	m.form.name.Blur()
	m.form.url.Blur()
	m.mode = ModeManage

	ctx := m.ctx
	return func() tea.Msg {
		t, err := m.catalog.AddTemplate(ctx, name, pageURL)
		if err != nil {
			return catalogDoneMsg{err: fmt.Errorf("add template: %w", err)}
		}
		return catalogDoneMsg{status: fmt.Sprintf("Added %q", t.Name)}
	}
}

// deleteSelected removes the highlighted entry of the current section
func (m *Model) deleteSelected() tea.Cmd {
	if m.catalog == nil || m.manage.length(m.snap) == 0 {
		return nil
	}
	ctx := m.ctx
	i := m.manage.cursor

	switch m.manage.section {
	case sectionTemplates:
		t := m.snap.Templates[i]
		return func() tea.Msg {
			if err := m.catalog.RemoveTemplate(ctx, t.ID); err != nil {
				return catalogDoneMsg{err: err}
			}
			return catalogDoneMsg{status: fmt.Sprintf("Removed %q", t.Name)}
		}

	case sectionVariables:
		v := m.snap.Variables[i]
		return func() tea.Msg {
			if err := m.catalog.RemoveVariable(ctx, v.Name); err != nil {
				return catalogDoneMsg{err: err}
			}
			return catalogDoneMsg{status: "Removed variable " + v.Name}
		}

	case sectionEnvironments:
		env := m.snap.Environments[i]
		return func() tea.Msg {
			if err := m.catalog.RemoveEnvironment(ctx, env.ID); err != nil {
				return catalogDoneMsg{err: err}
			}
			return catalogDoneMsg{status: "Removed environment " + env.Name}
		}
	}
	return nil
}

// moveSelected reorders templates; other sections ignore it
func (m *Model) moveSelected(delta int) tea.Cmd {
	if m.catalog == nil || m.manage.section != sectionTemplates || len(m.snap.Templates) == 0 {
		return nil
	}
	ctx := m.ctx
	t := m.snap.Templates[m.manage.cursor]

	next := m.manage.cursor + delta
	if next >= 0 && next < len(m.snap.Templates) {
		m.manage.cursor = next
	}
	return func() tea.Msg {
		if err := m.catalog.MoveTemplate(ctx, t.ID, delta); err != nil {
			return catalogDoneMsg{err: err}
		}
		return catalogDoneMsg{status: fmt.Sprintf("Moved %q", t.Name)}
	}
}
