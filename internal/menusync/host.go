package menusync

import (
	"context"
	"net/url"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
)

// Query parameters understood by the management surface
const (
	PrefillNameParam = "prefillName"
	PrefillURLParam  = "prefillUrl"

	// DefaultPrefillName is used when the active page has no title
	DefaultPrefillName = "New Search"
)

// MenuHost owns the rendered menu. Nodes are created in the order given;
// a node's parent is always created before it.
type MenuHost interface {
	RemoveAllNodes(ctx context.Context) error
	CreateNode(ctx context.Context, node menu.Node) error
}

// Tab is the page the user is looking at
type Tab struct {
	URL   string
	Title string
}

// TabHost opens pages and reports the active one
type TabHost interface {
	QueryActiveTab(ctx context.Context) (Tab, error)
	OpenNewTab(ctx context.Context, url string) error
	OpenManagementSurface(ctx context.Context, params url.Values) error
	IsOwnSurface(url string) bool
}

// Activation is a user click on a menu node
type Activation struct {
	ActivatedID  string
	ParentID     string
	SelectedText string
}
