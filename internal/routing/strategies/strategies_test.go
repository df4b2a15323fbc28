package strategies

import (
	"context"
	"testing"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	"github.com/agentcore/agentcore/internal/routing"
	"github.com/stretchr/testify/require"
)

func TestQualityCritical_AppliesOnlyToCritical(t *testing.T) {
	s := QualityCritical{PremiumBestModel: "premium-best"}
	require.True(t, s.AppliesTo(&taskdomain.Task{Priority: taskdomain.PriorityCritical}))
	require.False(t, s.AppliesTo(&taskdomain.Task{Priority: taskdomain.PriorityLow}))

	model, ok := s.Select(context.Background(), &taskdomain.Task{})
	require.True(t, ok)
	require.Equal(t, "premium-best", model)
}

func TestLongContext_Threshold(t *testing.T) {
	s := LongContext{TokenThreshold: 8000, Model: "long-context-model"}
	small := &taskdomain.Task{Context: taskdomain.ContextRequirements{EstimatedTokens: 100}}
	large := &taskdomain.Task{Context: taskdomain.ContextRequirements{EstimatedTokens: 20000}}
	require.False(t, s.AppliesTo(small))
	require.True(t, s.AppliesTo(large))
}

func TestCostOptimization_Buckets(t *testing.T) {
	s := CostOptimization{
		TinyModel: "tiny", TinyMax: 500,
		MediumModel: "medium", MediumMax: 4000,
		LargeModel: "large", LargeMax: 20000,
		VeryLargeModel: "very-large",
	}

	cases := []struct {
		tokens int
		want   string
	}{
		{100, "tiny"},
		{2000, "medium"},
		{10000, "large"},
		{100000, "very-large"},
	}
	for _, c := range cases {
		model, ok := s.Select(context.Background(), &taskdomain.Task{Context: taskdomain.ContextRequirements{EstimatedTokens: c.tokens}})
		require.True(t, ok)
		require.Equal(t, c.want, model)
	}
}

func TestComplexityBased_UsesRegistry(t *testing.T) {
	reg := routing.NewModelRegistryWithDefaults()
	s := ComplexityBased{Registry: reg}

	model, ok := s.Select(context.Background(), &taskdomain.Task{Difficulty: 9})
	require.True(t, ok)
	require.Equal(t, "premium-best", model)
}
