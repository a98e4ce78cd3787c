// Package menusync keeps a host menu in step with the stored configuration
// and routes clicks on it.
//
// A Synchronizer owns one event loop. Store changes and menu activations
// are queued and handled one at a time, each to completion. Every event
// starts from a fresh store read; nothing is cached between events.
//
// # Rebuild
//
// On start and on every relevant change the whole menu is removed and
// recreated from menu.BuildTree. The menu is never patched.
//
// # Activation
//
// Node identities are decoded once with menu.Parse and routed on their
// kind. A click that references a template or an environment that no
// longer exists does nothing.
package menusync
