package menusync

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeMenu records the nodes currently shown
type fakeMenu struct {
	mu       sync.Mutex
	nodes    []menu.Node
	rebuilds int
	failOn   string
}

func (f *fakeMenu) RemoveAllNodes(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes = nil
	f.rebuilds++
	return nil
}

func (f *fakeMenu) CreateNode(_ context.Context, n menu.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == f.failOn {
		return errors.New("duplicate id")
	}
	if n.ParentID != "" && !f.has(n.ParentID) {
		return errors.New("parent missing: " + n.ParentID)
	}
	f.nodes = append(f.nodes, n)
	return nil
}

func (f *fakeMenu) has(id string) bool {
	for _, n := range f.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeMenu) snapshot() ([]menu.Node, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]menu.Node{}, f.nodes...), f.rebuilds
}

// fakeTabs records opened pages
type fakeTabs struct {
	mu       sync.Mutex
	active   Tab
	opened   []string
	managed  []url.Values
	queryErr error
}

func (f *fakeTabs) QueryActiveTab(context.Context) (Tab, error) {
	return f.active, f.queryErr
}

func (f *fakeTabs) OpenNewTab(_ context.Context, u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, u)
	return nil
}

func (f *fakeTabs) OpenManagementSurface(_ context.Context, params url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.managed = append(f.managed, params)
	return nil
}

func (f *fakeTabs) IsOwnSurface(u string) bool {
	return strings.HasPrefix(u, "chrome://") || strings.HasPrefix(u, "shortcuts://")
}

func (f *fakeTabs) openedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.opened...)
}

func fixture() types.Snapshot {
	return types.Snapshot{
		Templates: []types.Template{
			{ID: "t1", Name: "Jira", URL: "https://{{HOST}}/browse/%s"},
			{ID: "t2", Name: "Google", URL: "https://google.com/search?q=%s"},
		},
		Variables: []types.Variable{{Name: "HOST", DefaultValue: "jira.example.com"}},
		Environments: []types.Environment{
			{ID: "e1", Name: "DEV", Values: []types.EnvValue{{Key: "HOST", Value: "jira.dev"}}},
			{ID: "e2", Name: "PROD", Values: []types.EnvValue{}},
		},
	}
}

func newTestSynchronizer(snap types.Snapshot) (*Synchronizer, *store.Memory, *fakeMenu, *fakeTabs) {
	st := store.NewMemory(snap)
	m := &fakeMenu{}
	tabs := &fakeTabs{}
	return New(st, m, tabs), st, m, tabs
}

func TestRebuild_CreatesTree(t *testing.T) {
	s, _, m, _ := newTestSynchronizer(fixture())
	require.NoError(t, s.Rebuild(context.Background()))

	nodes, _ := m.snapshot()
	if diff := cmp.Diff(menu.BuildTree(fixture(), menu.DefaultRootTitle), nodes); diff != "" {
		t.Errorf("menu mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	s, _, m, _ := newTestSynchronizer(fixture())
	ctx := context.Background()

	require.NoError(t, s.Rebuild(ctx))
	first, _ := m.snapshot()
	require.NoError(t, s.Rebuild(ctx))
	second, rebuilds := m.snapshot()

	assert.Equal(t, 2, rebuilds)
	assert.Equal(t, first, second)
}

func TestRebuild_StoreFailureKeepsMenu(t *testing.T) {
	s, _, m, _ := newTestSynchronizer(fixture())
	require.NoError(t, s.Rebuild(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Rebuild(ctx))

	nodes, rebuilds := m.snapshot()
	assert.Equal(t, 1, rebuilds)
	assert.NotEmpty(t, nodes)
}

func TestRebuild_NodeFailureContinues(t *testing.T) {
	s, _, m, _ := newTestSynchronizer(fixture())
	m.failOn = menu.TemplateLeaf("t2").String()

	err := s.Rebuild(context.Background())
	assert.Error(t, err)

	nodes, _ := m.snapshot()
	assert.True(t, containsID(nodes, menu.ManageID))
	assert.False(t, containsID(nodes, menu.TemplateLeaf("t2").String()))
}

func TestRootTitleOption(t *testing.T) {
	st := store.NewMemory(types.Snapshot{})
	m := &fakeMenu{}
	s := New(st, m, &fakeTabs{}, WithRootTitle("Lookup"), WithLogger(nil))

	require.NoError(t, s.Rebuild(context.Background()))
	nodes, _ := m.snapshot()
	assert.Equal(t, "Lookup", nodes[0].Label)
}

func TestHandleActivation(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		selection string
		wantOpen  []string
	}{
		{
			name:      "leaf with environment",
			id:        menu.TemplateEnvLeaf("t1", "e1").String(),
			selection: "ABC-1",
			wantOpen:  []string{"https://jira.dev/browse/ABC-1"},
		},
		{
			name:      "environment without value uses default",
			id:        menu.TemplateEnvLeaf("t1", "e2").String(),
			selection: "ABC-1",
			wantOpen:  []string{"https://jira.example.com/browse/ABC-1"},
		},
		{
			name:      "deleted environment is a no-op",
			id:        menu.TemplateEnvLeaf("t1", "gone").String(),
			selection: "x",
		},
		{
			name:      "leaf without environment encodes selection",
			id:        menu.TemplateLeaf("t2").String(),
			selection: "a b&c",
			wantOpen:  []string{"https://google.com/search?q=a%20b%26c"},
		},
		{
			name: "deleted template is a no-op",
			id:   menu.TemplateLeaf("gone").String(),
		},
		{
			name: "branch is a no-op",
			id:   menu.Branch("t1").String(),
		},
		{
			name: "root is a no-op",
			id:   menu.RootID,
		},
		{
			name: "separator is a no-op",
			id:   menu.SeparatorID,
		},
		{
			name: "unknown id is a no-op",
			id:   "something-else",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, tabs := newTestSynchronizer(fixture())
			err := s.HandleActivation(context.Background(), Activation{
				ActivatedID:  tt.id,
				SelectedText: tt.selection,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOpen, nilIfEmpty(tabs.openedURLs()))
			assert.Empty(t, tabs.managed)
		})
	}
}

func TestHandleActivation_Manage(t *testing.T) {
	s, _, _, tabs := newTestSynchronizer(fixture())
	require.NoError(t, s.HandleActivation(context.Background(), Activation{ActivatedID: menu.ManageID}))

	require.Len(t, tabs.managed, 1)
	assert.Empty(t, tabs.managed[0])
	assert.Empty(t, tabs.opened)
}

func TestHandleActivation_AddCurrentPage(t *testing.T) {
	tests := []struct {
		name   string
		active Tab
		want   url.Values
	}{
		{
			name:   "prefills title and url",
			active: Tab{URL: "https://docs.example.com/?q=%s", Title: " Docs "},
			want:   url.Values{PrefillNameParam: {"Docs"}, PrefillURLParam: {"https://docs.example.com/?q=%s"}},
		},
		{
			name:   "missing title falls back",
			active: Tab{URL: "https://a.example.com"},
			want:   url.Values{PrefillNameParam: {DefaultPrefillName}, PrefillURLParam: {"https://a.example.com"}},
		},
		{
			name:   "own surface is ignored",
			active: Tab{URL: "chrome://extensions", Title: "Extensions"},
		},
		{
			name:   "management surface is ignored",
			active: Tab{URL: "shortcuts://manage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, tabs := newTestSynchronizer(fixture())
			tabs.active = tt.active

			require.NoError(t, s.HandleActivation(context.Background(), Activation{ActivatedID: menu.AddCurrentPageID}))
			if tt.want == nil {
				assert.Empty(t, tabs.managed)
				return
			}
			require.Len(t, tabs.managed, 1)
			assert.Equal(t, tt.want, tabs.managed[0])
		})
	}
}

func TestHandleActivation_QueryFailure(t *testing.T) {
	s, _, _, tabs := newTestSynchronizer(fixture())
	tabs.queryErr = errors.New("no window")

	err := s.HandleActivation(context.Background(), Activation{ActivatedID: menu.AddCurrentPageID})
	assert.ErrorContains(t, err, "no window")
	assert.Empty(t, tabs.managed)
}

func TestRelevant(t *testing.T) {
	assert.True(t, Relevant(types.Change{Keys: []types.Key{types.KeyTemplates}}))
	assert.True(t, Relevant(types.Change{Keys: []types.Key{types.KeyVariables}}))
	assert.True(t, Relevant(types.Change{Keys: []types.Key{types.KeyEnvironments}}))
	assert.False(t, Relevant(types.Change{Keys: []types.Key{"theme"}}))
	assert.False(t, Relevant(types.Change{}))
}

func TestRun_RebuildsOnChangeAndRoutesClicks(t *testing.T) {
	s, st, m, tabs := newTestSynchronizer(fixture())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Initial build
	require.Eventually(t, func() bool {
		_, n := m.snapshot()
		return n >= 1
	}, 3*time.Second, 10*time.Millisecond)

	// Removing every environment turns the branch into a direct leaf
	envs := []types.Environment{}
	require.NoError(t, st.Set(ctx, types.Partial{Environments: &envs}))

	require.Eventually(t, func() bool {
		nodes, _ := m.snapshot()
		return containsID(nodes, menu.TemplateLeaf("t1").String())
	}, 3*time.Second, 10*time.Millisecond)

	nodes, _ := m.snapshot()
	assert.False(t, containsID(nodes, menu.Branch("t1").String()))

	// Clicks are handled in order: the stale environment leaf opens
	// nothing, the new direct leaf resolves with defaults
	require.True(t, s.Activate(Activation{ActivatedID: menu.TemplateEnvLeaf("t1", "e1").String(), SelectedText: "Q"}))
	require.True(t, s.Activate(Activation{ActivatedID: menu.TemplateLeaf("t1").String(), SelectedText: "R"}))
	require.Eventually(t, func() bool {
		return len(tabs.openedURLs()) >= 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"https://jira.example.com/browse/R"}, tabs.openedURLs())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_IrrelevantChangeSkipsRebuild(t *testing.T) {
	s, _, m, _ := newTestSynchronizer(fixture())
	s.Notify(types.Change{Keys: []types.Key{"theme"}})

	select {
	case <-s.rebuild:
		t.Fatal("irrelevant change queued a rebuild")
	default:
	}

	// Relevant changes coalesce into one pending rebuild
	s.Notify(types.Change{Keys: []types.Key{types.KeyTemplates}})
	s.Notify(types.Change{Keys: []types.Key{types.KeyVariables}})
	assert.Len(t, s.rebuild, 1)

	_, rebuilds := m.snapshot()
	assert.Zero(t, rebuilds)
}

func containsID(nodes []menu.Node, id string) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
