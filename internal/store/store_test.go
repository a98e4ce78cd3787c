package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seed() types.Snapshot {
	return types.Snapshot{
		Templates: []types.Template{{ID: "t1", Name: "Search", URL: "https://x/?q=%s"}},
		Variables: []types.Variable{{Name: "HOST", DefaultValue: "d.com"}},
		Environments: []types.Environment{
			{ID: "e1", Name: "DEV", Values: []types.EnvValue{{Key: "HOST", Value: "dev.com"}}},
		},
	}
}

// changeRecorder collects notifications from any goroutine
type changeRecorder struct {
	mu      sync.Mutex
	changes []types.Change
	ch      chan types.Change
}

func newRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan types.Change, 16)}
}

func (r *changeRecorder) listen(c types.Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
	r.ch <- c
}

func (r *changeRecorder) wait(t *testing.T) types.Change {
	t.Helper()
	select {
	case c := <-r.ch:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return types.Change{}
	}
}

// backends returns one fresh instance of every store implementation
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	f, err := NewFile(filepath.Join(dir, "shortcuts.json"), nil)
	require.NoError(t, err)

	s, err := NewSQLite(filepath.Join(dir, "shortcuts.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return map[string]Store{
		"memory": NewMemory(types.Snapshot{}),
		"file":   f,
		"sqlite": s,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Missing keys come back as empty collections
			empty, err := st.Get(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty.Templates)
			assert.Empty(t, empty.Templates)
			assert.Empty(t, empty.Environments)

			rec := newRecorder()
			unsubscribe := st.OnChange(rec.listen)

			require.NoError(t, st.Set(ctx, types.FullPartial(seed())))
			change := rec.wait(t)
			assert.ElementsMatch(t, types.AllKeys, change.Keys)

			got, err := st.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, seed(), got)

			// Partial writes leave other keys alone
			templates := []types.Template{}
			require.NoError(t, st.Set(ctx, types.Partial{Templates: &templates}))
			change = rec.wait(t)
			assert.Equal(t, []types.Key{types.KeyTemplates}, change.Keys)

			got, err = st.Get(ctx)
			require.NoError(t, err)
			assert.Empty(t, got.Templates)
			assert.Equal(t, seed().Variables, got.Variables)

			// Get with keys projects
			onlyVars, err := st.Get(ctx, types.KeyVariables)
			require.NoError(t, err)
			assert.Len(t, onlyVars.Variables, 1)
			assert.Empty(t, onlyVars.Environments)

			unsubscribe()
			require.NoError(t, st.Set(ctx, types.Partial{Templates: &templates}))
			select {
			case c := <-rec.ch:
				t.Fatalf("unexpected notification after unsubscribe: %+v", c)
			default:
			}
		})
	}
}

func TestStore_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(seed())

	snap, err := m.Get(ctx)
	require.NoError(t, err)
	snap.Environments[0].Values[0].Value = "mutated"

	again, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev.com", again.Environments[0].Values[0].Value)
}

func TestMemory_FailWrites(t *testing.T) {
	m := NewMemory(seed())
	m.FailWrites = errors.New("quota exceeded")

	err := m.Set(context.Background(), types.FullPartial(types.Snapshot{}))
	assert.EqualError(t, err, "quota exceeded")

	snap, _ := m.Get(context.Background())
	assert.Len(t, snap.Templates, 1)
}

func TestFile_WatchReportsExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "shortcuts.json")
	f, err := NewFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, types.FullPartial(seed())))

	require.NoError(t, f.Watch(ctx))
	defer f.Close()

	rec := newRecorder()
	f.OnChange(rec.listen)

	// Another process rewrites only the environments
	external := seed()
	external.Environments[0].Values[0].Value = "other.com"
	data, err := json.Marshal(external)
	require.NoError(t, err)
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, data, 0644))
	require.NoError(t, os.Rename(tmp, path))

	change := rec.wait(t)
	assert.Equal(t, []types.Key{types.KeyEnvironments}, change.Keys)

	snap, err := f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other.com", snap.Environments[0].Values[0].Value)
}

func TestFile_OwnWritesNotifiedOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, err := NewFile(filepath.Join(t.TempDir(), "shortcuts.json"), nil)
	require.NoError(t, err)
	require.NoError(t, f.Watch(ctx))
	defer f.Close()

	rec := newRecorder()
	f.OnChange(rec.listen)

	require.NoError(t, f.Set(ctx, types.FullPartial(seed())))
	rec.wait(t)

	// The watcher sees the rename but the content matches what we wrote
	time.Sleep(200 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.changes, 1)
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortcuts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFile(path, nil)
	assert.Error(t, err)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shortcuts.db")

	s, err := NewSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, types.FullPartial(seed())))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path, nil)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed(), snap)
}

func TestFile_ReadsLegacyURLsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortcuts.json")
	legacy := `{"urls":[{"id":"t1","name":"Jira","url":"https://jira/%s"}],"variables":[],"environments":[]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	f, err := NewFile(path, nil)
	require.NoError(t, err)

	snap, err := f.Get(context.Background(), types.KeyTemplates)
	require.NoError(t, err)
	require.Len(t, snap.Templates, 1)
	assert.Equal(t, "t1", snap.Templates[0].ID)

	// The next write stores them under the current key
	require.NoError(t, f.Set(context.Background(), types.Partial{Variables: &[]types.Variable{}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"templates"`)
	assert.NotContains(t, string(data), `"urls"`)
}

func TestFile_TemplatesKeyWinsOverLegacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortcuts.json")
	doc := `{"templates":[{"id":"new","name":"New","url":"https://n"}],"urls":[{"id":"old","name":"Old","url":"https://o"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	f, err := NewFile(path, nil)
	require.NoError(t, err)

	snap, err := f.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Templates, 1)
	assert.Equal(t, "new", snap.Templates[0].ID)
}

func TestSQLite_WatchReportsWritesFromOtherHandles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "shortcuts.db")
	watched, err := NewSQLite(path, nil)
	require.NoError(t, err)
	defer watched.Close()
	require.NoError(t, watched.Set(ctx, types.FullPartial(seed())))

	watched.pollInterval = 20 * time.Millisecond
	require.NoError(t, watched.Watch(ctx))

	rec := newRecorder()
	watched.OnChange(rec.listen)

	// A second handle stands in for another process
	other, err := NewSQLite(path, nil)
	require.NoError(t, err)
	defer other.Close()

	external := seed()
	external.Environments[0].Values[0].Value = "other.com"
	require.NoError(t, other.Set(ctx, types.FullPartial(external)))

	// Templates and variables were rewritten unchanged
	change := rec.wait(t)
	assert.Equal(t, []types.Key{types.KeyEnvironments}, change.Keys)

	snap, err := watched.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other.com", snap.Environments[0].Values[0].Value)
}

func TestSQLite_OwnWritesNotifiedOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "shortcuts.db"), nil)
	require.NoError(t, err)
	defer s.Close()
	s.pollInterval = 20 * time.Millisecond
	require.NoError(t, s.Watch(ctx))

	rec := newRecorder()
	s.OnChange(rec.listen)

	require.NoError(t, s.Set(ctx, types.FullPartial(seed())))
	rec.wait(t)

	// Several poll ticks pass without a second notification
	time.Sleep(200 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.changes, 1)
}
