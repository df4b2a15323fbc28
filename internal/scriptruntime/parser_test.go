package scriptruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseScript_RejectsUnrepairableGarbage(t *testing.T) {
	_, err := ParseScript("not json at all {{{")
	require.Error(t, err)
}

func TestAsPlan_RejectsNonTaskListShapes(t *testing.T) {
	_, ok := asPlan("just a string")
	require.False(t, ok)

	_, ok = asPlan(map[string]any{"title": "no steps field"})
	require.False(t, ok)
}

func TestAsPlan_ExtractsExitRequirementHandle(t *testing.T) {
	plan, ok := asPlan(map[string]any{
		"title": "t",
		"steps": []any{
			map[string]any{
				"title":       "step-1",
				"description": "d",
				"step_type":   "verify",
				"exit_requirement": map[string]any{
					"tool": "bash",
					"args": map[string]any{"command": "go test ./..."},
				},
			},
		},
	})
	require.True(t, ok)
	require.NotNil(t, plan.Steps[0].ExitRequirement)
	require.Equal(t, "bash", plan.Steps[0].ExitRequirement.Tool)
	require.Equal(t, "go test ./...", plan.Steps[0].ExitRequirement.Args["command"])
}
