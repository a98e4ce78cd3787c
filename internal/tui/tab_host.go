package tui

import (
	"context"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
)

// eventBuffer bounds host events waiting for the program
const eventBuffer = 16

// manageRequestMsg asks the model to show the management screen
type manageRequestMsg struct {
	params url.Values
}

// openedMsg reports a page opened in the browser
type openedMsg struct {
	url string
}

// TabHost wraps the desktop tab host. Management requests are shown in
// the TUI instead of a browser page.
type TabHost struct {
	inner  menusync.TabHost
	events chan tea.Msg
}

// NewTabHost wraps inner
func NewTabHost(inner menusync.TabHost) *TabHost {
	return &TabHost{inner: inner, events: make(chan tea.Msg, eventBuffer)}
}

// Events is read by the model
func (t *TabHost) Events() <-chan tea.Msg {
	return t.events
}

// QueryActiveTab asks the wrapped host
func (t *TabHost) QueryActiveTab(ctx context.Context) (menusync.Tab, error) {
	return t.inner.QueryActiveTab(ctx)
}

// OpenNewTab opens url through the wrapped host and reports it
func (t *TabHost) OpenNewTab(ctx context.Context, url string) error {
	if err := t.inner.OpenNewTab(ctx, url); err != nil {
		return err
	}
	return t.send(ctx, openedMsg{url: url})
}

// OpenManagementSurface switches the TUI to the management screen
func (t *TabHost) OpenManagementSurface(ctx context.Context, params url.Values) error {
	return t.send(ctx, manageRequestMsg{params: params})
}

// IsOwnSurface asks the wrapped host
func (t *TabHost) IsOwnSurface(url string) bool {
	return t.inner.IsOwnSurface(url)
}

func (t *TabHost) send(ctx context.Context, msg tea.Msg) error {
	select {
	case t.events <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
