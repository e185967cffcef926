package app

import (
	"fmt"

	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/generation"
	"github.com/yungbote/coursehub/internal/generation/mock"
	"github.com/yungbote/coursehub/internal/observability"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/realtime"
	"github.com/yungbote/coursehub/internal/store"
)

type Services struct {
	Store    *store.Store
	Hub      *realtime.SSEHub
	Pipeline *generation.Pipeline
	Panel    *generation.Panel

	stopForward func()
}

func wireServices(log *logger.Logger, cfg *config.Config, clients Clients, metrics *observability.Metrics, courses []learning.Course) (Services, error) {
	log.Info("Wiring services...")

	st := store.New(courses)
	hub := realtime.NewSSEHub(log, realtime.DefaultHeartbeat)

	pipe, err := NewPipeline(log, cfg, clients, metrics, courses)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Store:       st,
		Hub:         hub,
		Pipeline:    pipe,
		Panel:       generation.NewPanel(pipe),
		stopForward: realtime.ForwardStore(st, hub),
	}, nil
}

// NewPipeline builds the generation pipeline from config. The CLI uses it
// directly for one-shot generations. The local backend answers from courses
// and bypasses the cache.
func NewPipeline(log *logger.Logger, cfg *config.Config, clients Clients, metrics *observability.Metrics, courses []learning.Course) (*generation.Pipeline, error) {
	var (
		remote   generation.Generator
		endpoint string
		cache    generation.Cache
	)
	switch cfg.Generation.Backend {
	case config.BackendLocal:
		remote = mock.New(courses)
		endpoint = "local"
	default:
		client, err := generation.NewClientFromConfig(cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("init generation client: %w", err)
		}
		remote = client
		endpoint = client.BaseURL()
		if clients.Redis != nil {
			cache = generation.NewRedisCache(clients.Redis, cfg.Cache.KeyPrefix)
		}
	}
	pipe, err := generation.NewPipeline(generation.PipelineOptions{
		Remote:            remote,
		Cache:             cache,
		CacheTTL:          cfg.Cache.TTL.Duration,
		Policy:            cfg.Generation.FailurePolicy,
		Validate:          cfg.Generation.Validate,
		RejectEmptyPrompt: cfg.Generation.RejectEmptyPrompt,
		Log:               log,
		Metrics:           metrics,
		Tracer:            observability.Tracer(),
	})
	if err != nil {
		return nil, fmt.Errorf("init generation pipeline: %w", err)
	}
	log.Info("generation pipeline ready",
		"backend", string(cfg.Generation.Backend),
		"base_url", endpoint,
		"policy", string(pipe.Policy()),
		"validate", cfg.Generation.Validate,
		"cache", cache != nil,
		"timeout", cfg.Generation.Timeout.Duration.String(),
	)
	return pipe, nil
}

func (s *Services) close() {
	if s.stopForward != nil {
		s.stopForward()
		s.stopForward = nil
	}
}

