package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/advisor"
	"github.com/jonathan/hiring-bias-game/internal/candidates"
	"github.com/jonathan/hiring-bias-game/internal/config"
	"github.com/jonathan/hiring-bias-game/internal/game"
	"github.com/jonathan/hiring-bias-game/internal/insights"
	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/store"
)

// app wires the components shared by serve and simulate.
type app struct {
	repo      *store.Repository
	client    llm.Client
	generator *candidates.Generator
	game      *game.Service
	advisor   *advisor.Advisor
}

// newApp opens the store and builds the services. A missing API key keeps
// every generation path local.
func newApp(ctx context.Context, cfg *config.Config, rng candidates.Randomizer, log *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	generator, client, err := newGenerator(ctx, cfg, rng, log)
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		closeClient(client, log)
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	repo, err := store.NewRepository(ctx, backend, store.WithLogger(log))
	if err != nil {
		_ = backend.Close()
		closeClient(client, log)
		return nil, err
	}

	svc := game.NewService(repo, generator, insights.NewEngine(),
		game.WithLogger(log),
		game.WithMaxRounds(cfg.MaxRounds),
		game.WithCandidatesPerRound(cfg.CandidatesPerRound))

	advisorOpts := []advisor.Option{advisor.WithLogger(log), advisor.WithTimeout(cfg.LLMTimeout)}
	if client != nil {
		advisorOpts = append(advisorOpts, advisor.WithClient(client))
	}

	return &app{
		repo:      repo,
		client:    client,
		generator: generator,
		game:      svc,
		advisor:   advisor.New(generator, repo, advisorOpts...),
	}, nil
}

// newGenerator builds the candidate generator, backed by the provider when an API key is set.
func newGenerator(ctx context.Context, cfg *config.Config, rng candidates.Randomizer, log *zap.Logger) (*candidates.Generator, llm.Client, error) {
	dataset, err := candidates.LoadDataset()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate dataset: %w", err)
	}
	local := candidates.NewLocalGenerator(dataset, rng)

	opts := []candidates.Option{candidates.WithLogger(log), candidates.WithTimeout(cfg.LLMTimeout)}
	var client llm.Client
	if cfg.APIKey != "" {
		client, err = llm.NewClient(ctx, modelConfig(cfg), cfg.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		opts = append(opts, candidates.WithClient(client))
	} else {
		log.Info("GEMINI_API_KEY not set, using local candidate templates and fallback texts")
	}
	return candidates.NewGenerator(local, opts...), client, nil
}

// modelConfig applies the configured model overrides to the default tiers.
func modelConfig(cfg *config.Config) *llm.Config {
	return llm.DefaultConfig().
		WithModel(llm.TierLite, cfg.LiteModel).
		WithModel(llm.TierStandard, cfg.StandardModel)
}

func (a *app) Close(log *zap.Logger) {
	if err := a.repo.Close(); err != nil {
		log.Warn("failed to close store", zap.Error(err))
	}
	closeClient(a.client, log)
}

func closeClient(client llm.Client, log *zap.Logger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Warn("failed to close LLM client", zap.Error(err))
	}
}
