// Package routing implements the model-routing layer: ModelRegistry,
// ProviderRegistry, RoutingStrategy chain and the Router façade (spec.md
// §4.1). When the requested level has no registered model,
// ModelRegistry.Select falls back to the nearest higher registered level,
// and only then to the highest registered level.
package routing

import (
	"fmt"
	"sort"
	"sync"
)

// DifficultyLevel is 1 (easiest) through 10 (hardest).
type DifficultyLevel = int

// ModelRegistry maps a difficulty level to a model name. Immutable once
// built (construction happens once at startup, per spec.md §9 "Global
// state").
type ModelRegistry struct {
	mu     sync.RWMutex
	models map[DifficultyLevel]string
}

// NewModelRegistry returns an empty registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{models: make(map[DifficultyLevel]string)}
}

// NewModelRegistryWithDefaults returns a registry pre-populated with the
// default difficulty bands documented in spec.md §4.1: 1-2 small/fast,
// 3-4 medium coder, 5-6 large general, 7-8 premium fast, 9-10 premium best.
func NewModelRegistryWithDefaults() *ModelRegistry {
	r := NewModelRegistry()
	r.RegisterRange(1, 2, "small-fast")
	r.RegisterRange(3, 4, "medium-coder")
	r.RegisterRange(5, 6, "large-general")
	r.RegisterRange(7, 8, "premium-fast")
	r.RegisterRange(9, 10, "premium-best")
	return r
}

// RegisterRange registers model for every difficulty in [lo, hi].
func (r *ModelRegistry) RegisterRange(lo, hi DifficultyLevel, model string) {
	for d := lo; d <= hi; d++ {
		_ = r.Register(d, model)
	}
}

// Register associates a model with a single difficulty level.
func (r *ModelRegistry) Register(difficulty DifficultyLevel, model string) error {
	if difficulty < 1 || difficulty > 10 {
		return fmt.Errorf("difficulty level must be between 1 and 10, got %d", difficulty)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[difficulty] = model
	return nil
}

// Select returns the model for difficulty: exact match first, else the
// nearest higher registered level, else the highest registered level.
func (r *ModelRegistry) Select(difficulty DifficultyLevel) (string, error) {
	if difficulty < 1 || difficulty > 10 {
		return "", fmt.Errorf("difficulty level must be between 1 and 10, got %d", difficulty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.models) == 0 {
		return "", fmt.Errorf("no models registered in ModelRegistry")
	}

	if model, ok := r.models[difficulty]; ok {
		return model, nil
	}

	var higherLevels []int
	for level := range r.models {
		if level >= difficulty {
			higherLevels = append(higherLevels, level)
		}
	}
	if len(higherLevels) > 0 {
		sort.Ints(higherLevels)
		return r.models[higherLevels[0]], nil
	}

	maxLevel := -1
	for level := range r.models {
		if level > maxLevel {
			maxLevel = level
		}
	}
	return r.models[maxLevel], nil
}

// RegisteredLevels returns the sorted list of difficulty levels with a
// registered model.
func (r *ModelRegistry) RegisteredLevels() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	levels := make([]int, 0, len(r.models))
	for level := range r.models {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}
