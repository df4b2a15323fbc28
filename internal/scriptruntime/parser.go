package scriptruntime

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ParseScript decodes a model-emitted script body. It tries strict JSON
// first, then falls back to jsonrepair the same way toolregistry.
// ParseArguments does for tool-call arguments — models routinely emit
// trailing commas, unquoted keys, or truncated output.
func ParseScript(raw string) (*Script, error) {
	script, err := decodeScript(raw)
	if err == nil {
		return script, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, fmt.Errorf("script is not valid JSON and could not be repaired: %w", err)
	}
	script, err = decodeScript(repaired)
	if err != nil {
		return nil, fmt.Errorf("repaired script still failed to parse: %w", err)
	}
	return script, nil
}

func decodeScript(raw string) (*Script, error) {
	var script Script
	if err := json.Unmarshal([]byte(raw), &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// asPlan attempts to interpret value as a TaskList-shaped Return: an object
// with a "title" string and a "steps" array of step objects. Anything else
// yields (nil, false) and the raw value passes through untouched.
func asPlan(value any) (*Plan, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	rawSteps, ok := obj["steps"].([]any)
	if !ok {
		return nil, false
	}

	title, _ := obj["title"].(string)
	plan := &Plan{Title: title}
	for _, rawStep := range rawSteps {
		stepObj, ok := rawStep.(map[string]any)
		if !ok {
			return nil, false
		}
		step := StepSpec{
			Title:       stringField(stepObj, "title"),
			Description: stringField(stepObj, "description"),
			StepType:    stringField(stepObj, "step_type"),
		}
		if deps, ok := stepObj["dependencies"].([]any); ok {
			for _, d := range deps {
				if s, ok := d.(string); ok {
					step.Dependencies = append(step.Dependencies, s)
				}
			}
		}
		if reqObj, ok := stepObj["exit_requirement"].(map[string]any); ok {
			req := toolInvocationFromMap(reqObj)
			step.ExitRequirement = &req
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, true
}

func stringField(obj map[string]any, key string) string {
	v, _ := obj[key].(string)
	return v
}

func toolInvocationFromMap(obj map[string]any) ToolInvocation {
	inv := ToolInvocation{Tool: stringField(obj, "tool")}
	if args, ok := obj["args"].(map[string]any); ok {
		inv.Args = args
	}
	return inv
}
