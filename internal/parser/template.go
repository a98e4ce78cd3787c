package parser

import (
	"regexp"
	"strings"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// SelectionPlaceholder is replaced by the encoded selection text
const SelectionPlaceholder = "%s"

var (
	// Variable placeholder pattern: {{NAME}} (non-greedy, name trimmed)
	varPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
)

// ExtractVariableNames extracts all unique variable names from a URL pattern
// Returns variable names without the {{ }} brackets, in order of first use
func ExtractVariableNames(input string) []string {
	matches := varPattern.FindAllStringSubmatch(input, -1)
	seen := make(map[string]bool)
	var names []string
	for _, match := range matches {
		if len(match) > 1 {
			name := strings.TrimSpace(match[1])
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// HasPlaceholders reports whether the pattern contains at least one {{...}}
func HasPlaceholders(input string) bool {
	return varPattern.MatchString(input)
}

// UnresolvedVariables returns the placeholder names that match no variable.
// These pass through to the final URL verbatim.
func UnresolvedVariables(input string, variables []types.Variable) []string {
	known := make(map[string]bool, len(variables))
	for _, v := range variables {
		known[v.Name] = true
	}
	var unresolved []string
	for _, name := range ExtractVariableNames(input) {
		if !known[name] {
			unresolved = append(unresolved, name)
		}
	}
	return unresolved
}

// Resolve turns a URL pattern into a navigable URL.
//
// Each {{NAME}} is looked up among variables; unknown names are left as is.
// A known variable takes the value stored in the environment identified by
// environmentID when that value is non-empty, and its default otherwise. An
// empty environmentID means no environment. Only the first %s is replaced
// with the percent-encoded selection; later occurrences stay literal.
func Resolve(urlPattern, environmentID string, variables []types.Variable, environments []types.Environment, selection string) string {
	var env *types.Environment
	if environmentID != "" {
		for i := range environments {
			if environments[i].ID == environmentID {
				env = &environments[i]
				break
			}
		}
	}

	result := varPattern.ReplaceAllStringFunc(urlPattern, func(match string) string {
		// Extract variable name (remove {{ and }})
		name := strings.TrimSpace(match[2 : len(match)-2])

		variable := findVariable(variables, name)
		if variable == nil {
			return match
		}

		if env != nil {
			if value, ok := env.Value(variable.Name); ok && value != "" {
				return value
			}
		}
		return variable.DefaultValue
	})

	return strings.Replace(result, SelectionPlaceholder, EncodeURIComponent(selection), 1)
}

// ResolveTemplate resolves a stored template against a snapshot
func ResolveTemplate(t types.Template, environmentID string, snap types.Snapshot, selection string) string {
	return Resolve(t.URL, environmentID, snap.Variables, snap.Environments, selection)
}

func findVariable(variables []types.Variable, name string) *types.Variable {
	for i := range variables {
		if variables[i].Name == name {
			return &variables[i]
		}
	}
	return nil
}
