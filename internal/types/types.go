package types

import "strings"

// Template is a named URL pattern invocable from selected text
type Template struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"` // pattern with optional {{NAME}} and %s placeholders
}

// Variable is a named placeholder with a default value
type Variable struct {
	Name         string `json:"name" yaml:"name"`
	DefaultValue string `json:"defaultValue" yaml:"defaultValue"`
}

// EnvValue is one variable override inside an environment
type EnvValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Environment is a named bundle of variable overrides
type Environment struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Values []EnvValue `json:"values" yaml:"values"`
}

// Value returns the override stored for key, if any
func (e *Environment) Value(key string) (string, bool) {
	for _, v := range e.Values {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// Snapshot is the full configuration at one point in time
type Snapshot struct {
	Templates    []Template    `json:"templates" yaml:"templates"`
	Variables    []Variable    `json:"variables" yaml:"variables"`
	Environments []Environment `json:"environments" yaml:"environments"`
}

// Template finds a template by ID
func (s *Snapshot) Template(id string) (*Template, bool) {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i], true
		}
	}
	return nil, false
}

// Variable finds a variable by its stored (normalized) name
func (s *Snapshot) Variable(name string) (*Variable, bool) {
	for i := range s.Variables {
		if s.Variables[i].Name == name {
			return &s.Variables[i], true
		}
	}
	return nil, false
}

// Environment finds an environment by ID
func (s *Snapshot) Environment(id string) (*Environment, bool) {
	for i := range s.Environments {
		if s.Environments[i].ID == id {
			return &s.Environments[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can mutate freely
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Templates:    append([]Template{}, s.Templates...),
		Variables:    append([]Variable{}, s.Variables...),
		Environments: make([]Environment, len(s.Environments)),
	}
	for i, env := range s.Environments {
		env.Values = append([]EnvValue{}, env.Values...)
		out.Environments[i] = env
	}
	return out
}

// Normalize fills nil collections with empty ones
func (s *Snapshot) Normalize() {
	if s.Templates == nil {
		s.Templates = []Template{}
	}
	if s.Variables == nil {
		s.Variables = []Variable{}
	}
	if s.Environments == nil {
		s.Environments = []Environment{}
	}
	for i := range s.Environments {
		if s.Environments[i].Values == nil {
			s.Environments[i].Values = []EnvValue{}
		}
	}
}

// NormalizeName trims and upper-cases a variable or environment name.
// Uniqueness checks always run on the normalized form.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Key names a top-level collection in the configuration store
type Key string

const (
	KeyTemplates    Key = "templates"
	KeyVariables    Key = "variables"
	KeyEnvironments Key = "environments"
)

// AllKeys lists every store key in snapshot order
var AllKeys = []Key{KeyTemplates, KeyVariables, KeyEnvironments}

// Partial is a write to the store. Nil fields are left untouched.
type Partial struct {
	Templates    *[]Template
	Variables    *[]Variable
	Environments *[]Environment
}

// Keys lists the keys this write replaces
func (p Partial) Keys() []Key {
	var keys []Key
	if p.Templates != nil {
		keys = append(keys, KeyTemplates)
	}
	if p.Variables != nil {
		keys = append(keys, KeyVariables)
	}
	if p.Environments != nil {
		keys = append(keys, KeyEnvironments)
	}
	return keys
}

// Apply copies the written keys of p onto s
func (p Partial) Apply(s *Snapshot) {
	if p.Templates != nil {
		s.Templates = append([]Template{}, (*p.Templates)...)
	}
	if p.Variables != nil {
		s.Variables = append([]Variable{}, (*p.Variables)...)
	}
	if p.Environments != nil {
		envs := make([]Environment, len(*p.Environments))
		for i, env := range *p.Environments {
			env.Values = append([]EnvValue{}, env.Values...)
			envs[i] = env
		}
		s.Environments = envs
	}
}

// FullPartial returns a write that replaces every key with the contents of s
func FullPartial(s Snapshot) Partial {
	c := s.Clone()
	return Partial{
		Templates:    &c.Templates,
		Variables:    &c.Variables,
		Environments: &c.Environments,
	}
}

// Change is delivered to store listeners after a successful write
type Change struct {
	Keys []Key
}

// Has reports whether key is among the changed keys
func (c Change) Has(key Key) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}
