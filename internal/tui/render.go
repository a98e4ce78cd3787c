package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dvinay/custom-search-shortcuts/internal/keybinds"
	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/parser"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// View renders the current mode
func (m *Model) View() string {
	var body string
	switch m.mode {
	case ModeManage:
		body = m.renderManage()
	case ModeForm:
		body = m.renderForm()
	default:
		body = m.renderMenu()
	}

	box := styleBox
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		box.Render(body),
		m.renderStatusBar(),
		m.renderHelp(),
	)
}

func (m *Model) renderHeader() string {
	title := menu.DefaultRootTitle
	if root, ok := m.tree.Node(menu.RootID); ok {
		title = root.Label
	}
	selection := m.selected
	if selection == "" {
		selection = "(empty)"
	}
	return styleTitle.Render(title) + "  " + styleSubtle.Render("selection: "+truncate(selection, 40))
}

// renderMenu draws the tree (or filter matches) with the preview line
func (m *Model) renderMenu() string {
	var b strings.Builder

	if m.mode == ModeFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		if m.mode == ModeFilter {
			b.WriteString(styleSubtle.Render("no matches"))
		} else {
			b.WriteString(styleSubtle.Render("menu is empty"))
		}
		return b.String()
	}

	for i, r := range m.rows {
		b.WriteString(m.renderRow(r, i == m.cursor))
		b.WriteString("\n")
	}

	if preview := m.preview(); preview != "" {
		b.WriteString("\n")
		b.WriteString(preview)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderRow(r row, selected bool) string {
	if r.node.Separator {
		return styleSubtle.Render("  " + strings.Repeat("─", 24))
	}

	indent := strings.Repeat("  ", r.depth)
	marker := "  "
	if menu.Parse(r.node.ID).Kind == menu.KindBranch {
		if m.expanded[r.node.ID] {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	line := indent + marker + r.label
	if selected {
		return styleSelected.Render("> " + line)
	}
	return "  " + line
}

// preview resolves the highlighted leaf against the last loaded snapshot
func (m *Model) preview() string {
	r, ok := m.current()
	if !ok {
		return ""
	}
	id := menu.Parse(r.node.ID)
	if !id.IsLeaf() {
		return ""
	}
	t, ok := m.snap.Template(id.TemplateID)
	if !ok {
		return ""
	}

	resolved := parser.Resolve(t.URL, id.EnvironmentID, m.snap.Variables, m.snap.Environments, m.selected)
	line := styleSubtle.Render("→ ") + truncate(resolved, 100)
	if unknown := parser.UnresolvedVariables(t.URL, m.snap.Variables); len(unknown) > 0 {
		line += "  " + styleWarning.Render("unknown: "+strings.Join(unknown, ", "))
	}
	return line
}

func (m *Model) renderManage() string {
	var b strings.Builder

	var tabs []string
	for s := sectionTemplates; s < sectionCount; s++ {
		if s == m.manage.section {
			tabs = append(tabs, styleTitle.Render("["+s.String()+"]"))
		} else {
			tabs = append(tabs, styleSubtle.Render(s.String()))
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	var lines []string
	switch m.manage.section {
	case sectionTemplates:
		for _, t := range m.snap.Templates {
			lines = append(lines, fmt.Sprintf("%-20s %s", truncate(t.Name, 20), styleSubtle.Render(t.URL)))
		}
	case sectionVariables:
		for _, v := range m.snap.Variables {
			lines = append(lines, fmt.Sprintf("%-20s %s", v.Name, styleSubtle.Render("default: "+v.DefaultValue)))
		}
	case sectionEnvironments:
		for _, env := range m.snap.Environments {
			var values []string
			for _, v := range m.snap.Variables {
				value, ok := env.Value(v.Name)
				if !ok || value == "" {
					value = "(default)"
				}
				values = append(values, v.Name+"="+value)
			}
			lines = append(lines, fmt.Sprintf("%-20s %s", env.Name, styleSubtle.Render(strings.Join(values, " "))))
		}
	}

	if len(lines) == 0 {
		b.WriteString(styleSubtle.Render("nothing here yet"))
		return b.String()
	}
	for i, line := range lines {
		if i == m.manage.cursor {
			b.WriteString(styleSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderForm() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styleTitle.Render("Add search"),
		"",
		m.form.name.View(),
		m.form.url.View(),
		"",
		styleSubtle.Render("%s is replaced by the selection, {{NAME}} by a variable"),
	)
}

func (m *Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render(truncate(m.errorMsg, max(20, m.width-2)))
	}
	if m.statusMsg != "" {
		return styleSuccess.Render(truncate(m.statusMsg, max(20, m.width-2)))
	}
	return ""
}

// renderHelp lists the main keys of the current context
func (m *Model) renderHelp() string {
	context := m.keyContext()
	var actions []keybinds.Action
	switch m.mode {
	case ModeMenu:
		actions = []keybinds.Action{keybinds.ActionActivate, keybinds.ActionCollapse, keybinds.ActionOpenFilter, keybinds.ActionOpenManage, keybinds.ActionRefresh, keybinds.ActionQuit}
	case ModeFilter:
		actions = []keybinds.Action{keybinds.ActionFilterApply, keybinds.ActionFilterCancel}
	case ModeManage:
		actions = []keybinds.Action{keybinds.ActionNextSection, keybinds.ActionAddTemplate, keybinds.ActionDelete, keybinds.ActionMoveUp, keybinds.ActionMoveDown, keybinds.ActionCloseModal}
	case ModeForm:
		actions = []keybinds.Action{keybinds.ActionNextField, keybinds.ActionTextSubmit, keybinds.ActionTextCancel}
	}

	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%s %s", m.keys.GetBindingString(context, a), strings.ReplaceAll(string(a), "_", " ")))
	}
	return styleSubtle.Render(strings.Join(parts, " • "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
