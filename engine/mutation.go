package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qualisero/opquery/observability"
	"github.com/qualisero/opquery/model"
	"github.com/qualisero/opquery/reactive"
)

// Mutation is a handle on a write operation. Unlike queries, mutations never
// execute automatically: Execute must be called, and the enabled gate is
// checked at that moment rather than at setup, because parameter state can
// change in between.
type Mutation struct {
	client *Client
	desc   model.OperationDescriptor
	params any
	opts   *model.Options

	// mu keeps a single logical execution's handle state consistent; it
	// does not serialize the store or the transport.
	mu sync.Mutex
}

// Mutation creates a mutation handle for a declared write operation.
// Arguments follow Normalize. Classification is eager: unknown operations
// and query-method operations fail here.
func (c *Client) Mutation(operationID string, args ...any) (*Mutation, error) {
	call, err := Normalize(args...)
	if err != nil {
		return nil, err
	}

	desc, err := c.registry.AssertMutationUsage(operationID)
	if err != nil {
		c.log.Warn("engine: mutation setup rejected", zap.String("operation", operationID), zap.Error(err))
		return nil, err
	}

	return &Mutation{
		client: c,
		desc:   desc,
		params: call.Params(),
		opts:   MergeOptions(c.defaults, call.Options()),
	}, nil
}

// Descriptor returns the operation descriptor backing this handle.
func (m *Mutation) Descriptor() model.OperationDescriptor {
	return m.desc
}

// ResolvedPath resolves the path template against the current parameters.
func (m *Mutation) ResolvedPath() string {
	return Resolve(m.desc.Path, resolveParams(m.params))
}

// Enabled reports whether Execute would currently be allowed to start.
func (m *Mutation) Enabled() bool {
	return ComputeEnabled(m.ResolvedPath(), m.opts.Enabled)
}

// Execute runs the mutation once. The enabled gate is authoritative: while
// the path has unresolved placeholders or an explicit disable is active, no
// request is attempted and the recoverable disabled-execution error is both
// returned and delivered to the failure callback. On success, the merged
// invalidation targets are applied against the store and live query handles.
// Per-invocation option layers override the handle's own options.
func (m *Mutation) Execute(ctx context.Context, body any, overrides ...*model.Options) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.client
	layers := append([]*model.Options{m.opts}, overrides...)
	opts := MergeOptions(layers...)

	path := Resolve(m.desc.Path, resolveParams(m.params))
	if !ComputeEnabled(path, opts.Enabled) {
		err := model.NewDisabledExecutionError(m.desc.ID, UnresolvedPlaceholders(path))
		if opts.OnError != nil {
			opts.OnError(err)
		}
		if c.metrics != nil {
			c.metrics.DisabledExecutionsTotal.WithLabelValues(m.desc.ID).Inc()
			c.metrics.MutationExecutionsTotal.WithLabelValues(m.desc.ID, "disabled").Inc()
		}
		c.log.Warn("engine: mutation execute while disabled",
			zap.String("operation", m.desc.ID),
			zap.Strings("unresolved", UnresolvedPlaceholders(path)),
		)
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "opquery.mutation",
		observability.AttrOperationID.String(m.desc.ID),
		observability.AttrMethod.String(string(m.desc.Method)),
		observability.AttrEnabled.Bool(true),
	)

	start := time.Now()
	result, err := c.fetcher(ctx, m.buildRequest(path, body, opts))

	if c.metrics != nil {
		c.metrics.MutationDuration.WithLabelValues(m.desc.ID).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.MutationExecutionsTotal.WithLabelValues(m.desc.ID, outcome).Inc()
	}

	if err != nil {
		err = c.transformError(model.NewBackendError(m.desc.ID, err))
		observability.EndSpanWithError(span, err)
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return nil, err
	}

	if opts.OnSuccess != nil {
		opts.OnSuccess(result)
	}

	invErr := c.InvalidateQueries(ctx, m.desc.ID, opts.Invalidates...)
	span.SetAttributes(observability.AttrInvalidated.Int(len(opts.Invalidates)))
	observability.EndSpanWithError(span, invErr)
	if invErr != nil {
		c.log.Warn("engine: post-mutation invalidation failed",
			zap.String("operation", m.desc.ID),
			zap.Error(invErr),
		)
	}

	return result, nil
}

func (m *Mutation) buildRequest(path string, body any, opts *model.Options) Request {
	req := Request{
		OperationID: m.desc.ID,
		Method:      m.desc.Method,
		Path:        path,
		Body:        body,
	}
	if len(opts.Query) > 0 {
		req.Query = make(map[string]any, len(opts.Query))
		for name, raw := range opts.Query {
			req.Query[name] = reactive.Unwrap(raw)
		}
	}
	if t := opts.Transport; t != nil {
		req.Headers = t.Headers
		req.Timeout = t.Timeout
		req.Extra = t.Extra
	}
	return req
}
