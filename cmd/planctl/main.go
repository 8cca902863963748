// Package main provides planctl, a diagnostics tool that prints the
// action universe or a plan for a goal expression without executing
// anything against the game.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/blentz/artifactsmmo-sub007/internal/config"
	"github.com/blentz/artifactsmmo-sub007/internal/game/action"
	"github.com/blentz/artifactsmmo-sub007/internal/game/character"
	"github.com/blentz/artifactsmmo-sub007/internal/game/goal"
	"github.com/blentz/artifactsmmo-sub007/internal/game/planner"
	"github.com/blentz/artifactsmmo-sub007/internal/game/world"
	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	level := flag.Int("level", 1, "character level for the probe state")
	x := flag.Int("x", 0, "character x coordinate for the probe state")
	y := flag.Int("y", 0, "character y coordinate for the probe state")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: planctl [flags] actions | plan <goal-expression>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ws, err := world.LoadFile(cfg.Agent.WorldData)
	if err != nil {
		log.Fatalf("loading world data: %v", err)
	}

	snap := &gameapi.CharacterSnapshot{
		Name:                 "probe",
		Level:                *level,
		HP:                   120,
		MaxHP:                120,
		X:                    *x,
		Y:                    *y,
		MiningLevel:          1,
		WoodcuttingLevel:     1,
		FishingLevel:         1,
		WeaponcraftingLevel:  1,
		GearcraftingLevel:    1,
		JewelrycraftingLevel: 1,
		CookingLevel:         1,
		AlchemyLevel:         1,
		InventoryMax:         100,
	}
	current := character.BuildState(snap, ws, time.Now())

	sim := gameapi.NewSimulator(ws, *snap, 0)
	registry := action.DefaultRegistry(sim, sim, nil)
	available, err := registry.GenerateActionsForState(current, ws)
	if err != nil {
		log.Fatalf("generating actions: %v", err)
	}

	switch flag.Arg(0) {
	case "actions":
		fmt.Printf("%d actions available at level %d, (%d,%d):\n", len(available), *level, *x, *y)
		for _, a := range available {
			fmt.Printf("  %-40s cost=%-4d pre=%s eff=%s\n",
				a.Name(), a.Cost(), a.Preconditions(), a.Effects())
		}
	case "plan":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: planctl plan <goal-expression>")
			os.Exit(2)
		}
		logger := zap.NewNop()
		goals := goal.NewManager(planner.New(cfg.Agent.NodeBudget), logger)
		if cfg.Agent.GoalsDir != "" {
			if _, err := goals.LoadTemplates(cfg.Agent.GoalsDir); err != nil {
				log.Fatalf("loading goal templates: %v", err)
			}
		}

		g, err := goals.ResolveGoal(flag.Arg(1), current)
		if err != nil {
			log.Fatalf("resolving goal: %v", err)
		}
		fmt.Printf("goal %s -> target %s\n", g.Name(), g.TargetState())

		start := time.Now()
		plan, err := goals.PlanToTargetState(current, g.TargetState(), available)
		if err != nil {
			log.Fatalf("planning: %v", err)
		}
		fmt.Printf("plan (cost=%d, %d actions, %s):\n", plan.TotalCost, plan.Len(), time.Since(start).Round(time.Microsecond))
		for i, a := range plan.Actions {
			fmt.Printf("  %2d. %-40s cost=%d\n", i+1, a.Name(), a.Cost())
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q: want actions or plan\n", flag.Arg(0))
		os.Exit(2)
	}
}
