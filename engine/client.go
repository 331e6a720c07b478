package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qualisero/opquery/cache"
	"github.com/qualisero/opquery/observability"
	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/registry"
)

// Request is the fully resolved invocation handed to the transport: the
// engine has substituted path parameters, snapshotted query parameters, and
// merged the transport option layers. The engine never performs the request
// itself.
type Request struct {
	OperationID string
	Method      model.Method
	Path        string
	Query       map[string]any
	Headers     map[string]string
	Timeout     time.Duration
	Extra       map[string]any
	Body        any
}

// Fetcher executes a resolved request against the backend. Retry, backoff,
// and deduplication policy belong to the fetcher and store, not the engine.
type Fetcher func(ctx context.Context, req Request) (any, error)

// Client ties the descriptor table, the external store, the transport
// fetcher, and the instance-level option defaults together. It is created
// once at application start and passed by reference; there is no ambient
// global state.
type Client struct {
	registry *registry.Registry
	store    cache.Store
	fetcher  Fetcher
	defaults *model.Options
	log      *zap.Logger
	metrics  *observability.Metrics
	errHook  func(error) error

	mu      sync.Mutex
	handles map[*Query]struct{}
}

// ClientOption configures optional Client dependencies.
type ClientOption func(*Client)

// WithLogger sets the structured logger. A nop logger is used by default.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithDefaults sets the instance-level options layer merged beneath every
// call's own options.
func WithDefaults(defaults *model.Options) ClientOption {
	return func(c *Client) { c.defaults = defaults }
}

// WithErrorHook installs a hook that may intercept or transform transport
// errors before they reach callers. Classification and gating errors bypass
// the hook.
func WithErrorHook(hook func(error) error) ClientOption {
	return func(c *Client) { c.errHook = hook }
}

// NewClient creates a Client over an eagerly validated descriptor registry,
// an external store, and a transport fetcher.
func NewClient(reg *registry.Registry, store cache.Store, fetcher Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		registry: reg,
		store:    store,
		fetcher:  fetcher,
		log:      zap.NewNop(),
		handles:  make(map[*Query]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics != nil {
		c.metrics.OperationsRegistered.Set(float64(reg.Len()))
	}
	c.log.Info("engine: client ready", zap.Int("operations", reg.Len()))
	return c
}

// Registry exposes the descriptor table for classification queries.
func (c *Client) Registry() *registry.Registry {
	return c.registry
}

func (c *Client) register(q *Query) {
	c.mu.Lock()
	c.handles[q] = struct{}{}
	n := len(c.handles)
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.ActiveQueryHandles.Set(float64(n))
	}
}

func (c *Client) unregister(q *Query) {
	c.mu.Lock()
	delete(c.handles, q)
	n := len(c.handles)
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.ActiveQueryHandles.Set(float64(n))
	}
}

func (c *Client) liveHandles() []*Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Query, 0, len(c.handles))
	for q := range c.handles {
		out = append(out, q)
	}
	return out
}

// InvalidateQueries invalidates (and optionally refetches) the cache entries
// named by the targets. Mutations call this after a successful execute; it
// is also available for manual cache management.
func (c *Client) InvalidateQueries(ctx context.Context, sourceOp string, targets ...model.InvalidationTarget) error {
	matched := 0
	for _, target := range targets {
		n, err := c.applyInvalidation(ctx, target)
		if err != nil {
			return err
		}
		matched += n
	}

	if c.metrics != nil {
		c.metrics.InvalidationFanout.Observe(float64(matched))
		c.metrics.InvalidationsTotal.WithLabelValues(sourceOp).Add(float64(matched))
	}
	c.log.Debug("engine: invalidation pass",
		zap.String("operation", sourceOp),
		zap.Int("targets", len(targets)),
		zap.Int("matched", matched),
	)
	return nil
}

func (c *Client) applyInvalidation(ctx context.Context, target model.InvalidationTarget) (int, error) {
	switch {
	case target.Predicate != nil:
		return c.invalidateByPredicate(ctx, target.Predicate, target.Refetch)

	case target.Params != nil:
		desc, err := c.registry.Get(target.OperationID)
		if err != nil {
			return 0, err
		}
		key := GenerateKey(Resolve(desc.Path, resolveParams(target.Params)), nil)
		matched := 0
		if err := c.store.Delete(ctx, SerializeKey(key)); err != nil {
			return 0, err
		}
		for _, q := range c.liveHandles() {
			if q.Key().Equal(key) {
				matched++
				c.refetchHandle(ctx, q, target.Refetch)
			}
		}
		return matched, nil

	default:
		desc, err := c.registry.Get(target.OperationID)
		if err != nil {
			return 0, err
		}
		// A collection target needs a placeholder-free template: a literal
		// {name} segment in the prefix could never match a resolved key.
		if model.HasUnresolvedPlaceholders(desc.Path) {
			return 0, fmt.Errorf(
				"engine: invalidation target %q has path parameters; set Params or use a Predicate",
				target.OperationID,
			)
		}
		prefix := GenerateKey(desc.Path, nil)
		matched, err := c.invalidateByPredicate(ctx, BuildPredicate(prefix), target.Refetch)
		if err != nil {
			return 0, err
		}
		// Entries the store holds without a live handle are matched on
		// their serialized form: the prefix alone, or the prefix followed
		// by a trailing parameter object.
		serialized := SerializeKey(prefix)
		err = c.store.DeleteFunc(ctx, func(key string) bool {
			return key == serialized ||
				strings.HasPrefix(key, serialized+keySeparator+"map[") ||
				strings.HasPrefix(key, serialized+keySeparator+"slice[")
		})
		return matched, err
	}
}

func (c *Client) invalidateByPredicate(ctx context.Context, match func(model.QueryKey) bool, refetch bool) (int, error) {
	matched := 0
	for _, q := range c.liveHandles() {
		key := q.Key()
		if !match(key) {
			continue
		}
		matched++
		if err := c.store.Delete(ctx, SerializeKey(key)); err != nil {
			return matched, err
		}
		c.refetchHandle(ctx, q, refetch)
	}
	return matched, nil
}

func (c *Client) refetchHandle(ctx context.Context, q *Query, refetch bool) {
	if !refetch {
		return
	}
	if c.metrics != nil {
		c.metrics.RefetchesTotal.WithLabelValues(q.desc.ID).Inc()
	}
	if _, err := q.Get(ctx); err != nil {
		c.log.Warn("engine: refetch after invalidation failed",
			zap.String("operation", q.desc.ID),
			zap.Error(err),
		)
	}
}

// transformError runs the injected error hook, if any, over transport errors.
func (c *Client) transformError(err error) error {
	if err == nil || c.errHook == nil {
		return err
	}
	return c.errHook(err)
}
