package tui

import (
	"github.com/sahilm/fuzzy"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
)

// filteredRows lists actionable leaves whose label matches pattern, best
// match first. An empty pattern lists every leaf in menu order.
func (m *Model) filteredRows(pattern string) []row {
	var leaves []menu.Node
	var labels []string
	for _, n := range m.tree.Nodes() {
		if !menu.Parse(n.ID).IsLeaf() {
			continue
		}
		leaves = append(leaves, n)
		labels = append(labels, m.leafLabel(n))
	}

	if pattern == "" {
		rows := make([]row, len(leaves))
		for i, n := range leaves {
			rows[i] = row{node: n, label: labels[i]}
		}
		return rows
	}

	matches := fuzzy.Find(pattern, labels)
	rows := make([]row, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, row{node: leaves[match.Index], label: match.Str})
	}
	return rows
}
