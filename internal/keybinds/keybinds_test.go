package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"menu down", ContextMenu, "j", ActionNavigateDown, true},
		{"menu activate", ContextMenu, "enter", ActionActivate, true},
		{"menu filter", ContextMenu, "/", ActionOpenFilter, true},
		{"global from menu", ContextMenu, "ctrl+c", ActionQuitForce, true},
		{"manage close", ContextManage, "esc", ActionCloseModal, true},
		{"form submit", ContextForm, "enter", ActionTextSubmit, true},
		{"unbound", ContextMenu, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = %q, %v; want %q, %v", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestMatchMultiKey_GoToTop(t *testing.T) {
	r := NewDefaultRegistry()

	if _, complete, partial := r.MatchMultiKey(ContextMenu, "g"); complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v", complete, partial)
	}
	action, complete, _ := r.MatchMultiKey(ContextMenu, "g")
	if !complete || action != ActionGoToTop {
		t.Errorf("gg = %q complete=%v, want %q", action, complete, ActionGoToTop)
	}

	// A broken sequence clears the pending state
	r.MatchMultiKey(ContextMenu, "g")
	if _, complete, _ := r.MatchMultiKey(ContextMenu, "x"); complete {
		t.Error("gx should not match")
	}
	if action, ok, _ := r.MatchMultiKey(ContextMenu, "j"); !ok || action != ActionNavigateDown {
		t.Errorf("j after broken sequence = %q, %v", action, ok)
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextMenu, ActionNavigateUp); got != "k/up" {
		t.Errorf("GetBindingString = %q, want %q", got, "k/up")
	}
	if got := r.GetBindingString(ContextMenu, ActionQuitForce); got != "ctrl+c" {
		t.Errorf("global fallback = %q", got)
	}
	if got := r.GetBindingString(ContextForm, ActionOpenFilter); got != "unbound" {
		t.Errorf("unbound = %q", got)
	}
}

func TestLoadOrDefault_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	content := `{"menu": {"navigate_down": "n", "open_manage": "M, ctrl+m"}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}

	if _, ok := r.Match(ContextMenu, "j"); ok {
		t.Error("default key j should be replaced")
	}
	if a, _ := r.Match(ContextMenu, "n"); a != ActionNavigateDown {
		t.Errorf("n = %q", a)
	}
	if a, _ := r.Match(ContextMenu, "ctrl+m"); a != ActionOpenManage {
		t.Errorf("ctrl+m = %q", a)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	r, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if !r.HasBinding(ContextMenu, "q") {
		t.Error("expected default bindings")
	}
}

func TestLoadOrDefault_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"unknown action", `{"menu": {"fly": "f"}}`, "unknown action"},
		{"reserved key", `{"menu": {"quit": "ctrl+c"}}`, "reserved"},
		{"no way out", `{"manage": {"close_modal": ""}}`, "close_modal has no key"},
		{"bad json", `{`, "invalid keybinds.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keybinds.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadOrDefault(path)
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("err = %v, want containing %q", err, tt.errPart)
			}
		})
	}
}

func TestValidator_Shadowing(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextGlobal, "x", ActionQuit)
	r.Register(ContextMenu, "x", ActionOpenManage)

	result := NewValidator().ValidateRegistry(r)
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result.String())
	}
	if !result.HasWarnings() {
		t.Error("expected a shadowing warning")
	}
}

func TestValidateKey(t *testing.T) {
	tests := map[string]bool{
		"":       false,
		"ctrl+":  false,
		"ctrl+k": true,
		"j":      true,
	}
	for key, valid := range tests {
		if err := ValidateKey(key); (err == nil) != valid {
			t.Errorf("ValidateKey(%q) err = %v, want valid=%v", key, err, valid)
		}
	}
}
