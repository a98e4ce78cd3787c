package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	registerMenuBindings(r)
	registerFilterBindings(r)
	registerManageBindings(r)
	registerFormBindings(r)

	return r
}

func registerMenuBindings(r *Registry) {
	r.RegisterMultiple(ContextMenu, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextMenu, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextMenu, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(ContextMenu, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextMenu, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextMenu, "enter", ActionActivate)
	r.RegisterMultiple(ContextMenu, []string{"l", "right"}, ActionExpand)
	r.RegisterMultiple(ContextMenu, []string{"h", "left"}, ActionCollapse)
	r.Register(ContextMenu, "/", ActionOpenFilter)
	r.Register(ContextMenu, "m", ActionOpenManage)
	r.Register(ContextMenu, "r", ActionRefresh)
	r.Register(ContextMenu, "esc", ActionFilterCancel)
	r.Register(ContextMenu, "q", ActionQuit)
}

func registerFilterBindings(r *Registry) {
	r.Register(ContextFilter, "enter", ActionFilterApply)
	r.Register(ContextFilter, "esc", ActionFilterCancel)
	r.Register(ContextFilter, "up", ActionNavigateUp)
	r.Register(ContextFilter, "down", ActionNavigateDown)
}

func registerManageBindings(r *Registry) {
	r.RegisterMultiple(ContextManage, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextManage, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextManage, "tab", ActionNextSection)
	r.Register(ContextManage, "a", ActionAddTemplate)
	r.Register(ContextManage, "d", ActionDelete)
	r.Register(ContextManage, "K", ActionMoveUp)
	r.Register(ContextManage, "J", ActionMoveDown)
	r.RegisterMultiple(ContextManage, []string{"esc", "q"}, ActionCloseModal)
}

func registerFormBindings(r *Registry) {
	r.RegisterMultiple(ContextForm, []string{"tab", "shift+tab"}, ActionNextField)
	r.Register(ContextForm, "enter", ActionTextSubmit)
	r.Register(ContextForm, "esc", ActionTextCancel)
}
