package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	taskdomain "github.com/agentcore/agentcore/internal/domain/task"
	ctxdomain "github.com/agentcore/agentcore/internal/domain/context"
	"github.com/agentcore/agentcore/internal/domain/ports"
	coreerrors "github.com/agentcore/agentcore/internal/shared/errors"
	"github.com/agentcore/agentcore/internal/shared/logging"
)

// ClientFactory builds, caches and wraps Provider handles. Handles are
// wrapped in order: retry+circuit-breaker -> rate-limit. Cache entries
// expire after cacheTTL and are capped by an LRU of 64 entries (see
// SetCacheOptions).
type ClientFactory struct {
	mu           sync.Mutex
	cache        *lru.Cache[string, cacheEntry]
	cacheTTL     time.Duration
	breakers     *coreerrors.CircuitBreakerManager
	retryConfig  coreerrors.RetryConfig
	enableRetry  bool
	limiter      *rate.Limiter
	logger       *logging.Logger
	newRaw       func(provider, model string) (ports.Provider, error)
}

type cacheEntry struct {
	provider ports.Provider
	cachedAt time.Time
}

// NewClientFactory builds a factory around newRaw, the constructor for an
// unwrapped provider client.
func NewClientFactory(newRaw func(provider, model string) (ports.Provider, error)) *ClientFactory {
	cache, _ := lru.New[string, cacheEntry](64)
	return &ClientFactory{
		cache:       cache,
		cacheTTL:    10 * time.Minute,
		breakers:    coreerrors.NewCircuitBreakerManager(coreerrors.DefaultCircuitBreakerConfig()),
		retryConfig: coreerrors.DefaultRetryConfig(),
		enableRetry: true,
		logger:      logging.NewComponentLogger("client-factory"),
		newRaw:      newRaw,
	}
}

// SetCacheOptions overrides the LRU size and TTL.
func (f *ClientFactory) SetCacheOptions(size int, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cache, _ := lru.New[string, cacheEntry](size)
	f.cache = cache
	f.cacheTTL = ttl
}

// EnableUserRateLimit installs a token-bucket rate limiter shared across
// every client this factory produces from now on.
func (f *ClientFactory) EnableUserRateLimit(limit rate.Limit, burst int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limiter = rate.NewLimiter(limit, burst)
}

// DisableRetry turns off the retry+circuit-breaker wrapping layer.
func (f *ClientFactory) DisableRetry() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enableRetry = false
}

// GetClient returns a cached, wrapped provider for (provider, model),
// constructing and wrapping one on first use.
func (f *ClientFactory) GetClient(provider, model string) (ports.Provider, error) {
	key := provider + ":" + model

	f.mu.Lock()
	if entry, ok := f.cache.Get(key); ok {
		if time.Since(entry.cachedAt) < f.cacheTTL {
			f.mu.Unlock()
			return entry.provider, nil
		}
		f.cache.Remove(key)
	}
	f.mu.Unlock()

	client, err := f.newRaw(provider, model)
	if err != nil {
		return nil, fmt.Errorf("construct provider %s/%s: %w", provider, model, err)
	}

	wrapped := f.wrap(provider, model, client)

	f.mu.Lock()
	f.cache.Add(key, cacheEntry{provider: wrapped, cachedAt: time.Now()})
	f.mu.Unlock()

	return wrapped, nil
}

// GetIsolatedClient returns a freshly constructed, wrapped client that is
// never cached or shared — used for subagent calls that must not share
// circuit-breaker/rate-limit state with the parent task.
func (f *ClientFactory) GetIsolatedClient(provider, model string) (ports.Provider, error) {
	client, err := f.newRaw(provider, model)
	if err != nil {
		return nil, fmt.Errorf("construct isolated provider %s/%s: %w", provider, model, err)
	}
	wrapped := client
	if f.enableRetry {
		wrapped = &retryingProvider{
			delegate: wrapped,
			breaker:  coreerrors.NewCircuitBreaker("isolated-provider-"+provider, coreerrors.DefaultCircuitBreakerConfig()),
			retry:    f.retryConfig,
			logger:   f.logger,
		}
	}
	if f.limiter != nil {
		wrapped = &rateLimitedProvider{delegate: wrapped, limiter: rate.NewLimiter(f.limiter.Limit(), f.limiter.Burst())}
	}
	return wrapped, nil
}

func (f *ClientFactory) wrap(provider, model string, client ports.Provider) ports.Provider {
	wrapped := client
	if f.enableRetry {
		wrapped = &retryingProvider{
			delegate: wrapped,
			breaker:  f.breakers.Get("provider-" + provider),
			retry:    f.retryConfig,
			logger:   f.logger,
		}
	}
	if f.limiter != nil {
		wrapped = &rateLimitedProvider{delegate: wrapped, limiter: f.limiter}
	}
	return wrapped
}

// retryingProvider wraps Generate with retry+circuit-breaker: transient
// errors retry with backoff, and the breaker only records infra-level
// failures.
type retryingProvider struct {
	delegate ports.Provider
	breaker  *coreerrors.CircuitBreaker
	retry    coreerrors.RetryConfig
	logger   *logging.Logger
}

func (p *retryingProvider) Name() string                    { return p.delegate.Name() }
func (p *retryingProvider) IsAvailable(ctx context.Context) bool { return p.delegate.IsAvailable(ctx) }
func (p *retryingProvider) EstimateCost(c ctxdomain.Context) float64 { return p.delegate.EstimateCost(c) }

func (p *retryingProvider) Generate(ctx context.Context, query string, c ctxdomain.Context) (taskdomain.Response, error) {
	if err := p.breaker.Allow(); err != nil {
		return taskdomain.Response{}, err
	}
	resp, err := coreerrors.RetryWithResult(ctx, p.retry, func(ctx context.Context) (taskdomain.Response, error) {
		return p.delegate.Generate(ctx, query, c)
	})
	p.breaker.Mark(err)
	return resp, err
}

// rateLimitedProvider enforces a shared token-bucket limit before delegating.
type rateLimitedProvider struct {
	delegate ports.Provider
	limiter  *rate.Limiter
}

func (p *rateLimitedProvider) Name() string                    { return p.delegate.Name() }
func (p *rateLimitedProvider) IsAvailable(ctx context.Context) bool { return p.delegate.IsAvailable(ctx) }
func (p *rateLimitedProvider) EstimateCost(c ctxdomain.Context) float64 { return p.delegate.EstimateCost(c) }

func (p *rateLimitedProvider) Generate(ctx context.Context, query string, c ctxdomain.Context) (taskdomain.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return taskdomain.Response{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.delegate.Generate(ctx, query, c)
}
