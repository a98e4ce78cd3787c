package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
)

// MenuHost keeps the nodes created by the synchronizer.
// It is safe for concurrent use.
type MenuHost struct {
	mu    sync.RWMutex
	nodes []menu.Node
	ids   map[string]bool

	// updates holds at most one pending change signal
	updates chan struct{}
}

// NewMenuHost creates an empty menu
func NewMenuHost() *MenuHost {
	return &MenuHost{
		ids:     make(map[string]bool),
		updates: make(chan struct{}, 1),
	}
}

// RemoveAllNodes clears the menu
func (h *MenuHost) RemoveAllNodes(ctx context.Context) error {
	h.mu.Lock()
	h.nodes = nil
	h.ids = make(map[string]bool)
	h.mu.Unlock()

	h.signal()
	return nil
}

// CreateNode appends a node. The parent must already exist and ids are unique.
func (h *MenuHost) CreateNode(ctx context.Context, node menu.Node) error {
	h.mu.Lock()
	if h.ids[node.ID] {
		h.mu.Unlock()
		return fmt.Errorf("duplicate menu id: %s", node.ID)
	}
	if node.ParentID != "" && !h.ids[node.ParentID] {
		h.mu.Unlock()
		return fmt.Errorf("unknown parent %s for menu id %s", node.ParentID, node.ID)
	}
	h.nodes = append(h.nodes, node)
	h.ids[node.ID] = true
	h.mu.Unlock()

	h.signal()
	return nil
}

// Nodes returns a copy of the current nodes in creation order
func (h *MenuHost) Nodes() []menu.Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]menu.Node{}, h.nodes...)
}

// Updates delivers a signal after the node list changed.
// Several changes in a row collapse into one signal.
func (h *MenuHost) Updates() <-chan struct{} {
	return h.updates
}

func (h *MenuHost) signal() {
	select {
	case h.updates <- struct{}{}:
	default:
	}
}
