package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dima11235813/wellness-clinic-agent/internal/adapters/memory"
	"github.com/Dima11235813/wellness-clinic-agent/internal/adapters/redis"
	"github.com/Dima11235813/wellness-clinic-agent/internal/adapters/sim"
	"github.com/Dima11235813/wellness-clinic-agent/internal/config"
	"github.com/Dima11235813/wellness-clinic-agent/internal/conversation"
	"github.com/Dima11235813/wellness-clinic-agent/internal/nodes"
	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/ports"
)

// buildStore selects the thread store backend: Redis when configured,
// in-memory otherwise. The returned closer is a no-op for memory.
func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ThreadStore, func(), error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, threads will not survive a restart")
		return memory.New(), func() {}, nil
	}

	store, err := redis.New(ctx, cfg.RedisURL, redis.WithTTL(cfg.ThreadTTL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("using redis thread store", "ttl", cfg.ThreadTTL)
	return store, func() { _ = store.Close() }, nil
}

// buildService assembles the full graph service over the simulated
// collaborator backend.
func buildService(store ports.ThreadStore, cfg config.Config, logger *slog.Logger, engineOpts ...runtime.Option) (*conversation.Service, error) {
	suite, err := sim.NewSuite()
	if err != nil {
		return nil, fmt.Errorf("load simulation fixtures: %w", err)
	}

	deps := nodes.Deps{
		Classifier: suite.Classifier,
		Completer:  suite.Completer,
		Retriever:  suite.Retriever,
		Calendar:   suite.Calendar,
		Escalator:  suite.Escalator,
		Logger:     logger,
		Config:     cfg.Nodes(),
	}
	engineOpts = append(engineOpts, runtime.WithLogger(logger))
	return conversation.NewService(store, deps, engineOpts, conversation.WithLogger(logger)), nil
}
