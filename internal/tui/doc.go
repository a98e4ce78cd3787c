/*
Package tui is the terminal menu host for custom searches.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - menu_host.go: MenuHost, the node list the synchronizer rebuilds
  - tab_host.go: TabHost, forwards management requests into the program
  - model.go: Model state and message handling
  - keys.go: keyboard routing through the keybinds registry
  - filter.go: fuzzy filter over the leaves
  - manage.go: management screen and add-template form
  - render.go: lipgloss rendering
  - run.go: starts the program next to the synchronizer

# Threading Model

The menu synchronizer runs its own event loop and talks to the program only
through channels: MenuHost signals that the node list changed and TabHost
queues management requests and status messages. The model waits on both
with tea.Cmd functions, so all rendering state is owned by Bubble Tea's
goroutine. Clicks travel the other way through Activator.Activate, which
never blocks.
*/
package tui
