package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qualisero/opquery/observability"
	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

// Query is a live handle on a read operation. Its resolved path, cache key,
// and enabled state are pure recomputations over the reactive inputs: every
// accessor reads the current parameter values, so the handle itself holds no
// derived state that could go stale.
type Query struct {
	client  *Client
	desc    model.OperationDescriptor
	params  any
	opts    *model.Options
	cancels []func()

	watchers *reactive.Cell[int]
}

// Query creates a query handle for a declared read operation. Arguments
// follow Normalize: a *Call, path params and/or options. Classification is
// eager: unknown operations and mutation-method operations fail here, before
// any reactive subscription is established.
func (c *Client) Query(operationID string, args ...any) (*Query, error) {
	call, err := Normalize(args...)
	if err != nil {
		return nil, err
	}

	desc, err := c.registry.AssertQueryUsage(operationID)
	if err != nil {
		c.log.Warn("engine: query setup rejected", zap.String("operation", operationID), zap.Error(err))
		return nil, err
	}

	q := &Query{
		client:   c,
		desc:     desc,
		params:   call.Params(),
		opts:     MergeOptions(c.defaults, call.Options()),
		watchers: reactive.NewCell(0),
	}
	q.watchInputs()

	c.register(q)
	if c.metrics != nil {
		c.metrics.QueriesRegistered.WithLabelValues(desc.ID).Inc()
	}
	c.log.Debug("engine: query handle created",
		zap.String("operation", desc.ID),
		zap.String("template", desc.Path),
	)
	return q, nil
}

// watchInputs subscribes to every watchable reactive input so Subscribe
// callers observe recomputations. The engine never schedules work here; a
// change only bumps the notification cell.
func (q *Query) watchInputs() {
	notify := func() {
		q.watchers.Set(q.watchers.Get() + 1)
	}

	q.cancels = append(q.cancels, reactive.Watch(q.params, notify))
	switch p := q.params.(type) {
	case model.PathParams:
		for _, v := range p {
			q.cancels = append(q.cancels, reactive.Watch(v, notify))
		}
	case map[string]any:
		for _, v := range p {
			q.cancels = append(q.cancels, reactive.Watch(v, notify))
		}
	}
	if q.opts.Enabled != nil {
		q.cancels = append(q.cancels, reactive.Watch(q.opts.Enabled, notify))
	}
	for _, v := range q.opts.Query {
		q.cancels = append(q.cancels, reactive.Watch(v, notify))
	}
}

// Descriptor returns the operation descriptor backing this handle.
func (q *Query) Descriptor() model.OperationDescriptor {
	return q.desc
}

// ResolvedPath resolves the path template against the current parameter
// values. Placeholders whose value is currently nil stay literal.
func (q *Query) ResolvedPath() string {
	return Resolve(q.desc.Path, resolveParams(q.params))
}

// Key derives the current structural cache key from the resolved path and
// query parameters.
func (q *Query) Key() model.QueryKey {
	return GenerateKey(q.ResolvedPath(), q.opts.Query)
}

// Enabled reports whether the query may currently execute: the path must be
// fully resolved and any explicit enabled override must not be false.
func (q *Query) Enabled() bool {
	return ComputeEnabled(q.ResolvedPath(), q.opts.Enabled)
}

// Subscribe registers onChange to run whenever a reactive input changes,
// signalling that the resolved path, key, or enabled state may have moved.
func (q *Query) Subscribe(onChange func()) (cancel func()) {
	return q.watchers.Subscribe(onChange)
}

// Get reads the query through the external store, fetching on miss. While
// disabled it does not touch the store or the network: the recoverable
// disabled-execution error is returned and delivered to OnError.
func (q *Query) Get(ctx context.Context) (any, error) {
	c := q.client

	path := q.ResolvedPath()
	if !ComputeEnabled(path, q.opts.Enabled) {
		err := model.NewDisabledExecutionError(q.desc.ID, UnresolvedPlaceholders(path))
		q.deliverError(err)
		if c.metrics != nil {
			c.metrics.DisabledExecutionsTotal.WithLabelValues(q.desc.ID).Inc()
		}
		return nil, err
	}

	key := GenerateKey(path, q.opts.Query)
	serialized := SerializeKey(key)

	ctx, span := observability.StartSpan(ctx, "opquery.query",
		observability.AttrOperationID.String(q.desc.ID),
		observability.AttrMethod.String(string(q.desc.Method)),
		observability.AttrCacheKey.String(serialized),
	)

	start := time.Now()
	result, err := c.store.GetOrFetch(ctx, serialized, func(ctx context.Context) (any, error) {
		return c.fetcher(ctx, q.buildRequest(path, nil))
	})
	observability.EndSpanWithError(span, err)

	if c.metrics != nil {
		c.metrics.QueryFetchDuration.WithLabelValues(q.desc.ID).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.QueryFetchesTotal.WithLabelValues(q.desc.ID, outcome).Inc()
	}

	if err != nil {
		err = c.transformError(model.NewBackendError(q.desc.ID, err))
		q.deliverError(err)
		return nil, err
	}

	if q.opts.OnSuccess != nil {
		q.opts.OnSuccess(result)
	}
	return result, nil
}

// Refetch drops the cached entry for the current key and reads again.
func (q *Query) Refetch(ctx context.Context) (any, error) {
	path := q.ResolvedPath()
	if IsResolved(path) {
		key := SerializeKey(GenerateKey(path, q.opts.Query))
		if err := q.client.store.Delete(ctx, key); err != nil {
			return nil, err
		}
	}
	return q.Get(ctx)
}

// Close cancels the handle's reactive subscriptions and removes it from the
// client's live set. A closed handle no longer participates in invalidation.
func (q *Query) Close() {
	for _, cancel := range q.cancels {
		cancel()
	}
	q.cancels = nil
	q.client.unregister(q)
}

func (q *Query) buildRequest(path string, body any) Request {
	req := Request{
		OperationID: q.desc.ID,
		Method:      q.desc.Method,
		Path:        path,
		Body:        body,
	}
	if len(q.opts.Query) > 0 {
		req.Query = make(map[string]any, len(q.opts.Query))
		for name, raw := range q.opts.Query {
			req.Query[name] = reactive.Unwrap(raw)
		}
	}
	if t := q.opts.Transport; t != nil {
		req.Headers = t.Headers
		req.Timeout = t.Timeout
		req.Extra = t.Extra
	}
	return req
}

func (q *Query) deliverError(err error) {
	if q.opts.OnError != nil {
		q.opts.OnError(err)
	}
}
