package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available everywhere
	ContextMenu   Context = "menu"   // Menu tree
	ContextFilter Context = "filter" // Fuzzy filter input
	ContextManage Context = "manage" // Management screen
	ContextForm   Context = "form"   // Management form fields
)

const (
	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Navigation
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg'
	ActionGoToBottom     Action = "go_to_bottom"

	// Menu
	ActionActivate   Action = "activate" // Click a leaf, expand a branch
	ActionExpand     Action = "expand"
	ActionCollapse   Action = "collapse"
	ActionOpenFilter Action = "open_filter"
	ActionOpenManage Action = "open_manage"
	ActionRefresh    Action = "refresh_selection" // Re-read the clipboard

	// Filter input
	ActionFilterApply  Action = "filter_apply"
	ActionFilterCancel Action = "filter_cancel"

	// Management screen
	ActionCloseModal  Action = "close_modal"
	ActionAddTemplate Action = "add_template"
	ActionDelete      Action = "delete"
	ActionMoveUp      Action = "move_up"
	ActionMoveDown    Action = "move_down"
	ActionNextSection Action = "next_section"

	// Form
	ActionNextField  Action = "next_field"
	ActionTextSubmit Action = "text_submit"
	ActionTextCancel Action = "text_cancel"
)

// allActions is used to reject unknown names in keybinds.json
var allActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true,
	ActionGoToTop: true, ActionGoToTopPrepare: true, ActionGoToBottom: true,
	ActionActivate: true, ActionExpand: true, ActionCollapse: true,
	ActionOpenFilter: true, ActionOpenManage: true, ActionRefresh: true,
	ActionFilterApply: true, ActionFilterCancel: true,
	ActionCloseModal: true, ActionAddTemplate: true, ActionDelete: true,
	ActionMoveUp: true, ActionMoveDown: true, ActionNextSection: true,
	ActionNextField: true, ActionTextSubmit: true, ActionTextCancel: true,
}

// IsKnown reports whether a is a defined action
func IsKnown(a Action) bool {
	return allActions[a]
}
