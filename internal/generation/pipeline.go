package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
)

// Generator is implemented by *Client (the raw backend call) and by
// *Pipeline (the call with policy applied).
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type PipelineOptions struct {
	Remote   Generator
	Cache    Cache
	CacheTTL time.Duration

	Policy            config.FailurePolicy
	Validate          bool
	RejectEmptyPrompt bool

	Log     *logger.Logger
	Metrics *observability.Metrics
	Tracer  trace.Tracer
}

type Pipeline struct {
	remote   Generator
	cache    Cache
	cacheTTL time.Duration

	policy            config.FailurePolicy
	validate          bool
	rejectEmptyPrompt bool

	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Remote == nil {
		return nil, errors.New("generation: remote required")
	}
	policy := opts.Policy
	if policy == "" {
		policy = config.PolicySoft
	}
	if policy != config.PolicySoft && policy != config.PolicyHard {
		return nil, errors.New("generation: failure policy must be soft or hard")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("generation")
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Pipeline{
		remote:            opts.Remote,
		cache:             opts.Cache,
		cacheTTL:          ttl,
		policy:            policy,
		validate:          opts.Validate,
		rejectEmptyPrompt: opts.RejectEmptyPrompt,
		log:               log.With("component", "GenerationPipeline"),
		metrics:           opts.Metrics,
		tracer:            tracer,
	}, nil
}

func (p *Pipeline) Policy() config.FailurePolicy { return p.policy }

// Generate resolves req to a renderable response.
//
// Input errors (no tool, unknown tool, empty prompt when rejected) are always
// returned. Remote failures become fallback content under the soft policy and
// *Error values under the hard policy.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Response, error) {
	ctx, span := p.tracer.Start(ctx, "generation.generate",
		trace.WithAttributes(attribute.String("generation.action", string(req.Action))))
	defer span.End()
	start := time.Now()

	req, err := p.checkInput(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Response{}, err
	}

	key := CacheKey(req.Action, req.UserPrompt)
	if resp, ok := p.lookup(ctx, key); ok {
		p.finish(span, req.Action, resp, start)
		return resp, nil
	}

	resp, err := p.remote.Generate(ctx, req)
	if err == nil && p.validate {
		if verr := Validate(req.Action, resp); verr != nil {
			err = &Error{Kind: MalformedResponse, Err: verr}
		}
	}
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = RemoteUnreachable
			err = &Error{Kind: kind, Err: err}
		}
		p.metrics.IncGenerationFailure(string(req.Action), string(kind), string(p.policy))
		span.RecordError(err)
		if p.policy == config.PolicyHard {
			p.log.Warn("generation failed", "action", req.Action, "kind", kind, "error", err)
			span.SetStatus(codes.Error, string(kind))
			return Response{}, err
		}
		p.log.Warn("generation failed; serving fallback", "action", req.Action, "kind", kind, "error", err)
		resp = Fallback(req.Action, req.UserPrompt, kind)
		p.finish(span, req.Action, resp, start)
		return resp, nil
	}

	if resp.Source == "" {
		resp.Source = SourceRemote
	}
	if resp.Source == SourceRemote && strings.TrimSpace(resp.Error) == "" {
		p.store(ctx, key, resp)
	}
	p.finish(span, req.Action, resp, start)
	return resp, nil
}

func (p *Pipeline) checkInput(req Request) (Request, error) {
	action, err := ParseAction(string(req.Action))
	if err != nil {
		return req, err
	}
	req.Action = action
	if p.rejectEmptyPrompt && strings.TrimSpace(req.UserPrompt) == "" {
		return req, &Error{Kind: InvalidInput, Err: ErrEmptyPrompt}
	}
	return req, nil
}

func (p *Pipeline) lookup(ctx context.Context, key string) (Response, bool) {
	if p.cache == nil {
		return Response{}, false
	}
	resp, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("generation cache read failed", "key", key, "error", err)
		p.metrics.IncCache("error")
		return Response{}, false
	}
	if !ok {
		p.metrics.IncCache("miss")
		return Response{}, false
	}
	p.metrics.IncCache("hit")
	resp.Source = SourceCache
	resp.Reason = ""
	return resp, true
}

func (p *Pipeline) store(ctx context.Context, key string, resp Response) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, key, resp, p.cacheTTL); err != nil {
		p.log.Warn("generation cache write failed", "key", key, "error", err)
		p.metrics.IncCache("error")
		return
	}
	p.metrics.IncCache("store")
}

func (p *Pipeline) finish(span trace.Span, action Action, resp Response, start time.Time) {
	span.SetAttributes(
		attribute.String("generation.source", string(resp.Source)),
		attribute.String("generation.kind", string(resp.Kind)),
	)
	if resp.Reason != "" {
		span.SetAttributes(attribute.String("generation.reason", string(resp.Reason)))
	}
	p.metrics.ObserveGeneration(string(action), string(resp.Source), time.Since(start))
}
