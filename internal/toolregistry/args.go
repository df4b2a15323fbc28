package toolregistry

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ParseArguments unmarshals a tool call's raw JSON argument payload (as
// emitted by the script host over the JSON-RPC boundary) into a
// map[string]any, repairing common malformed-JSON patterns the model
// occasionally emits (trailing commas, unescaped quotes, unclosed braces)
// before giving up.
func ParseArguments(raw string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("repair tool arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("parse repaired tool arguments: %w", err)
	}
	return args, nil
}
