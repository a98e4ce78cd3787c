// Package store holds the configuration store backends.
//
// Every backend exposes the same contract: Get returns a snapshot with
// defaults for missing keys, Set replaces the named top-level keys
// wholesale, and OnChange listeners fire with the changed keys after a
// successful write. Callers re-fetch at every event boundary instead of
// caching a snapshot.
package store

import (
	"context"
	"sync"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Listener receives the keys touched by a successful write
type Listener func(types.Change)

// Store is the configuration store contract
type Store interface {
	// Get fetches the requested keys (all keys when none are given).
	// Keys that were never written come back as empty collections.
	Get(ctx context.Context, keys ...types.Key) (types.Snapshot, error)

	// Set replaces the keys present in the partial snapshot
	Set(ctx context.Context, p types.Partial) error

	// OnChange registers a listener and returns a function that removes it
	OnChange(l Listener) (unsubscribe func())

	Close() error
}

// wantKeys expands an empty key list to every key
func wantKeys(keys []types.Key) map[types.Key]bool {
	if len(keys) == 0 {
		keys = types.AllKeys
	}
	want := make(map[types.Key]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	return want
}

// project keeps only the requested keys of a snapshot, leaving the others empty
func project(s types.Snapshot, keys []types.Key) types.Snapshot {
	want := wantKeys(keys)
	out := types.Snapshot{}
	c := s.Clone()
	if want[types.KeyTemplates] {
		out.Templates = c.Templates
	}
	if want[types.KeyVariables] {
		out.Variables = c.Variables
	}
	if want[types.KeyEnvironments] {
		out.Environments = c.Environments
	}
	out.Normalize()
	return out
}

// listeners is the fan-out shared by every backend
type listeners struct {
	mu   sync.Mutex
	next int
	byID map[int]Listener
}

func (ls *listeners) add(l Listener) func() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.byID == nil {
		ls.byID = make(map[int]Listener)
	}
	id := ls.next
	ls.next++
	ls.byID[id] = l

	return func() {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		delete(ls.byID, id)
	}
}

// notify calls every listener outside the lock
func (ls *listeners) notify(change types.Change) {
	if len(change.Keys) == 0 {
		return
	}
	ls.mu.Lock()
	snapshot := make([]Listener, 0, len(ls.byID))
	for _, l := range ls.byID {
		snapshot = append(snapshot, l)
	}
	ls.mu.Unlock()

	for _, l := range snapshot {
		l(change)
	}
}
