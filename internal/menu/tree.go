package menu

import (
	"github.com/dvinay/custom-search-shortcuts/internal/parser"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Labels of the fixed nodes
const (
	DefaultRootTitle    = "Custom Search"
	ManageLabel         = "Manage Custom Searches"
	AddCurrentPageLabel = "Add Current Page"
)

// Node describes one entry to create in the menu host
type Node struct {
	ID         string
	Label      string
	ParentID   string // empty for the root
	Separator  bool
	Actionable bool // false for the root, branches and separators
}

// EnvironmentSensitive reports whether a template gets one leaf per environment.
// Recomputed from the snapshot on every build, never stored.
func EnvironmentSensitive(t types.Template, environments []types.Environment) bool {
	return parser.HasPlaceholders(t.URL) && len(environments) > 0
}

// BuildTree projects a snapshot onto the menu structure, in creation order:
// root, one subtree per template, separator (when there are templates),
// manage action, add-current-page action.
// The result depends only on its inputs, so building twice gives equal trees.
func BuildTree(snap types.Snapshot, rootTitle string) []Node {
	if rootTitle == "" {
		rootTitle = DefaultRootTitle
	}

	nodes := []Node{{ID: RootID, Label: rootTitle}}

	for _, t := range snap.Templates {
		if EnvironmentSensitive(t, snap.Environments) {
			branchID := Branch(t.ID).String()
			nodes = append(nodes, Node{ID: branchID, Label: t.Name, ParentID: RootID})
			for _, env := range snap.Environments {
				nodes = append(nodes, Node{
					ID:         TemplateEnvLeaf(t.ID, env.ID).String(),
					Label:      env.Name,
					ParentID:   branchID,
					Actionable: true,
				})
			}
			continue
		}
		nodes = append(nodes, Node{
			ID:         TemplateLeaf(t.ID).String(),
			Label:      t.Name,
			ParentID:   RootID,
			Actionable: true,
		})
	}

	if len(snap.Templates) > 0 {
		nodes = append(nodes, Node{ID: SeparatorID, ParentID: RootID, Separator: true})
	}

	nodes = append(nodes,
		Node{ID: ManageID, Label: ManageLabel, ParentID: RootID, Actionable: true},
		Node{ID: AddCurrentPageID, Label: AddCurrentPageLabel, ParentID: RootID, Actionable: true},
	)

	return nodes
}

// Tree indexes a node list by parent for rendering
type Tree struct {
	nodes    []Node
	byID     map[string]int
	children map[string][]int
}

// NewTree indexes nodes; creation order is kept for siblings
func NewTree(nodes []Node) *Tree {
	t := &Tree{
		nodes:    append([]Node{}, nodes...),
		byID:     make(map[string]int, len(nodes)),
		children: make(map[string][]int),
	}
	for i, n := range t.nodes {
		t.byID[n.ID] = i
		t.children[n.ParentID] = append(t.children[n.ParentID], i)
	}
	return t
}

// Node returns the node with the given id
func (t *Tree) Node(id string) (Node, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[i], true
}

// Children returns the direct children of parentID in creation order
func (t *Tree) Children(parentID string) []Node {
	idx := t.children[parentID]
	out := make([]Node, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.nodes[i])
	}
	return out
}

// Nodes returns every node in creation order
func (t *Tree) Nodes() []Node {
	return append([]Node{}, t.nodes...)
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	return len(t.nodes)
}
