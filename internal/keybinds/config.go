package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config is the user's keybinding file. Each section maps an action name
// to a comma separated list of keys.
type Config struct {
	Global map[string]string `json:"global,omitempty"`
	Menu   map[string]string `json:"menu,omitempty"`
	Filter map[string]string `json:"filter,omitempty"`
	Manage map[string]string `json:"manage,omitempty"`
	Form   map[string]string `json:"form,omitempty"`
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}
	return &config, nil
}

// ApplyConfig applies user configuration to a registry.
// User bindings replace the default keys of the same action.
func ApplyConfig(registry *Registry, config *Config) error {
	sections := map[Context]map[string]string{
		ContextGlobal: config.Global,
		ContextMenu:   config.Menu,
		ContextFilter: config.Filter,
		ContextManage: config.Manage,
		ContextForm:   config.Form,
	}

	for context, bindings := range sections {
		for actionStr, keyList := range bindings {
			action := Action(actionStr)
			if !IsKnown(action) {
				return fmt.Errorf("unknown action %q in %s keybindings", actionStr, context)
			}
			registry.Unbind(context, action)
			for _, key := range strings.Split(keyList, ",") {
				if key = strings.TrimSpace(key); key != "" {
					registry.Register(context, key, action)
				}
			}
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}
		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
		if result := NewValidator().ValidateRegistry(registry); result.HasErrors() {
			return nil, fmt.Errorf("invalid keybindings:\n%s", result.String())
		}
	}

	return registry, nil
}
