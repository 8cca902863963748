// Package main provides the agent binary that drives one or more
// characters toward their configured goals in a plan/execute loop.
//
// When api.base_url is empty the agent runs against the built-in
// deterministic simulator, which is the dry-run mode used for local
// development and planning validation.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/blentz/artifactsmmo-sub007/internal/agent"
	"github.com/blentz/artifactsmmo-sub007/internal/config"
	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/executor"
	"github.com/blentz/artifactsmmo-sub007/internal/game/goal"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
	"github.com/blentz/artifactsmmo-sub007/internal/observability"
	"github.com/blentz/artifactsmmo-sub007/internal/storage/postgres"
)

const simulatorCooldown = 1 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if cfg.API.BaseURL != "" {
		logger.Fatal("remote API transport is not part of this build; leave api.base_url empty to run the simulator")
	}

	// Load world data
	worldStart := time.Now()
	ws, err := world.LoadFile(cfg.Agent.WorldData)
	if err != nil {
		logger.Fatal("loading world data", zap.Error(err))
	}
	logger.Info("world data loaded",
		zap.Int("tiles", ws.TileCount()),
		zap.Int("monsters", ws.MonsterCount()),
		zap.Int("resources", ws.ResourceCount()),
		zap.Int("items", ws.ItemCount()),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	p := planner.New(cfg.Agent.NodeBudget)
	goals := goal.NewManager(p, logger)
	if cfg.Agent.GoalsDir != "" {
		names, err := goals.LoadTemplates(cfg.Agent.GoalsDir)
		if err != nil {
			logger.Fatal("loading goal templates", zap.Error(err))
		}
		logger.Info("goal templates loaded", zap.Int("count", len(names)))
	}

	// Optional run-history persistence
	var history agent.HistoryRecorder = agent.NopRecorder{}
	if cfg.History.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		history = postgres.NewRunRepository(pool.DB())
		logger.Info("run history enabled",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	}

	runner := agent.NewRunner(logger)
	for _, ch := range cfg.Agent.Characters {
		sim := gameapi.NewSimulator(ws, gameapi.CharacterSnapshot{
			Name:                 ch.Name,
			Level:                1,
			HP:                   120,
			MaxHP:                120,
			MiningLevel:          1,
			WoodcuttingLevel:     1,
			FishingLevel:         1,
			WeaponcraftingLevel:  1,
			GearcraftingLevel:    1,
			JewelrycraftingLevel: 1,
			CookingLevel:         1,
			AlchemyLevel:         1,
			InventoryMax:         100,
		}, simulatorCooldown)

		registry := action.DefaultRegistry(sim, sim, nil)
		exec := executor.New(goals, registry, sim, ws, executor.Config{
			MaxDepth:   cfg.Agent.MaxDepth,
			MaxRetries: cfg.Agent.MaxRetries,
		}, logger)

		runner.Add(agent.NewLoop(agent.LoopConfig{
			Character:    ch.Name,
			GoalExpr:     cfg.GoalFor(ch),
			TickInterval: cfg.Agent.TickInterval,
		}, sim, ws, goals, registry, exec, history, logger))
	}

	logger.Info("agent initialized",
		zap.Int("characters", len(cfg.Agent.Characters)),
		zap.Duration("startup", time.Since(start)),
	)

	if err := runner.Run(ctx); err != nil {
		logger.Fatal("agent error", zap.Error(err))
	}
}
