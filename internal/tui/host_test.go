package tui

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
)

func TestMenuHost_CreateAndRemove(t *testing.T) {
	ctx := context.Background()
	h := NewMenuHost()

	if err := h.CreateNode(ctx, menu.Node{ID: "child", ParentID: menu.RootID}); err == nil {
		t.Error("expected error for missing parent")
	}
	if err := h.CreateNode(ctx, menu.Node{ID: menu.RootID}); err != nil {
		t.Fatal(err)
	}
	if err := h.CreateNode(ctx, menu.Node{ID: menu.RootID}); err == nil {
		t.Error("expected error for duplicate id")
	}
	if err := h.CreateNode(ctx, menu.Node{ID: "child", ParentID: menu.RootID}); err != nil {
		t.Fatal(err)
	}
	if got := len(h.Nodes()); got != 2 {
		t.Errorf("nodes = %d, want 2", got)
	}

	if err := h.RemoveAllNodes(ctx); err != nil {
		t.Fatal(err)
	}
	if got := len(h.Nodes()); got != 0 {
		t.Errorf("nodes after remove = %d", got)
	}
	// The same ids can be created again after a removal
	if err := h.CreateNode(ctx, menu.Node{ID: menu.RootID}); err != nil {
		t.Errorf("recreate root: %v", err)
	}
}

func TestMenuHost_UpdatesCoalesce(t *testing.T) {
	ctx := context.Background()
	h := NewMenuHost()
	h.CreateNode(ctx, menu.Node{ID: menu.RootID})
	h.CreateNode(ctx, menu.Node{ID: "a", ParentID: menu.RootID})

	select {
	case <-h.Updates():
	default:
		t.Fatal("expected a pending update")
	}
	select {
	case <-h.Updates():
		t.Fatal("updates should collapse into one signal")
	default:
	}
}

// stubTabs is the wrapped desktop host
type stubTabs struct {
	opened  []string
	openErr error
}

func (s *stubTabs) QueryActiveTab(context.Context) (menusync.Tab, error) {
	return menusync.Tab{URL: "https://a"}, nil
}

func (s *stubTabs) OpenNewTab(_ context.Context, u string) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = append(s.opened, u)
	return nil
}

func (s *stubTabs) OpenManagementSurface(context.Context, url.Values) error {
	return errors.New("wrapped host must not be asked")
}

func (s *stubTabs) IsOwnSurface(u string) bool { return u == "about:blank" }

func TestTabHost(t *testing.T) {
	ctx := context.Background()
	inner := &stubTabs{}
	h := NewTabHost(inner)

	if err := h.OpenNewTab(ctx, "https://x"); err != nil {
		t.Fatal(err)
	}
	if msg := <-h.Events(); msg != (openedMsg{url: "https://x"}) {
		t.Errorf("event = %#v", msg)
	}

	params := url.Values{menusync.PrefillNameParam: {"A"}}
	if err := h.OpenManagementSurface(ctx, params); err != nil {
		t.Fatal(err)
	}
	msg, ok := (<-h.Events()).(manageRequestMsg)
	if !ok || msg.params.Get(menusync.PrefillNameParam) != "A" {
		t.Errorf("event = %#v", msg)
	}

	if !h.IsOwnSurface("about:blank") || h.IsOwnSurface("https://a") {
		t.Error("IsOwnSurface not delegated")
	}

	inner.openErr = errors.New("no browser")
	if err := h.OpenNewTab(ctx, "https://y"); err == nil {
		t.Error("expected browser error")
	}
	select {
	case msg := <-h.Events():
		t.Errorf("unexpected event %#v", msg)
	default:
	}
}

func TestTabHost_SendHonorsContext(t *testing.T) {
	h := NewTabHost(&stubTabs{})
	for i := 0; i < eventBuffer; i++ {
		if err := h.OpenManagementSurface(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.OpenManagementSurface(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
