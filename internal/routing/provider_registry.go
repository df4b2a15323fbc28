package routing

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentcore/agentcore/internal/domain/ports"
	"github.com/agentcore/agentcore/internal/shared/config"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
)

// ProviderRegistry holds one Provider handle per known model name, built
// once from a RoutingConfig, validating that every enabled tier's
// credentials resolve at construction time rather than on first use.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]ports.Provider
	config    config.RoutingConfig
}

// NewProviderRegistry builds a registry from cfg, calling factory once per
// tier family that is enabled. factory receives the tier name and the
// resolved API key (empty for the local tier) and returns the providers to
// register for that tier.
func NewProviderRegistry(cfg config.RoutingConfig, factory func(tier, apiKey string) (map[string]ports.Provider, error)) (*ProviderRegistry, error) {
	reg := &ProviderRegistry{providers: make(map[string]ports.Provider), config: cfg}

	if cfg.Tiers.LocalEnabled {
		providers, err := factory("local", "")
		if err != nil {
			return nil, fmt.Errorf("register local providers: %w", err)
		}
		for name, p := range providers {
			reg.providers[name] = p
		}
	}

	if cfg.Tiers.HostedEnabled {
		key, ok := cfg.GetAPIKey("hosted")
		if !ok {
			return nil, &coreerrors.MissingAPIKeyError{Name: "hosted"}
		}
		providers, err := factory("hosted", key)
		if err != nil {
			return nil, fmt.Errorf("register hosted providers: %w", err)
		}
		for name, p := range providers {
			reg.providers[name] = p
		}
	}

	if cfg.Tiers.PremiumEnabled {
		key, ok := cfg.GetAPIKey("premium")
		if !ok {
			return nil, &coreerrors.MissingAPIKeyError{Name: "premium"}
		}
		providers, err := factory("premium", key)
		if err != nil {
			return nil, fmt.Errorf("register premium providers: %w", err)
		}
		for name, p := range providers {
			reg.providers[name] = p
		}
	}

	return reg, nil
}

// Get returns the provider registered for model.
func (r *ProviderRegistry) Get(model string) (ports.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[model]
	if !ok {
		return nil, fmt.Errorf("no provider registered for model %q; make sure the corresponding tier is enabled", model)
	}
	return p, nil
}

// IsAvailable reports whether model's provider is currently reachable.
func (r *ProviderRegistry) IsAvailable(ctx context.Context, model string) bool {
	p, err := r.Get(model)
	if err != nil {
		return false
	}
	return p.IsAvailable(ctx)
}

// RegisteredModels returns every model name with a registered provider.
func (r *ProviderRegistry) RegisteredModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// RegisterProvider overrides (or adds) the provider for model. Used by
// tests to substitute mock providers, per spec.md §9 "Global state".
func (r *ProviderRegistry) RegisterProvider(model string, p ports.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[model] = p
}
