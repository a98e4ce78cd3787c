package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Query applies a JMESPath expression to the exported form of snap and
// returns the result as indented JSON
func Query(snap types.Snapshot, expression string) (string, error) {
	snap.Normalize()

	// Round-trip through JSON so the expression sees exported field names
	encoded, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}
	var data interface{}
	if err := json.Unmarshal(encoded, &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}
