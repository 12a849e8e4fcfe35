package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"devils-dice/internal/config"
	"devils-dice/internal/game/agent"
	"devils-dice/internal/game/dice"
	"devils-dice/internal/game/table"
	"devils-dice/internal/model"
	"devils-dice/internal/service"
)

// simulator plays random-agent games through the table service.
type simulator struct {
	tables      *service.TableService
	rules       table.Rules
	agents      agent.Config
	games       int
	players     int
	concurrency int
	maxSteps    int
	seed        int64
}

func newSimulator(tables *service.TableService, cfg *config.Config) *simulator {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		if s, err := dice.NewSeed(); err == nil {
			seed = s
		}
	}

	var rolls atomic.Int64
	tables.SetRollerFactory(func() dice.Roller {
		return dice.NewRandRoller(seed + rolls.Add(1))
	})

	return &simulator{
		tables:      tables,
		rules:       cfg.Game.Rules(),
		agents:      cfg.Simulation.Agent(),
		games:       cfg.Simulation.Games,
		players:     cfg.Simulation.Players,
		concurrency: max(cfg.Simulation.Concurrency, 1),
		maxSteps:    cfg.Simulation.MaxSteps,
		seed:        seed,
	}
}

// result is the outcome of one game.
type result struct {
	winner   model.PlayerID
	seat     int
	rolloff  bool
	turns    int
	finished bool
}

// stats aggregates game results.
type stats struct {
	mu         sync.Mutex
	games      int
	unfinished int
	rolloffs   int
	turns      int
	winsBySeat []int
}

func (s *stats) add(r result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games++
	if !r.finished {
		s.unfinished++
		return
	}
	s.turns += r.turns
	s.winsBySeat[r.seat]++
	if r.rolloff {
		s.rolloffs++
	}
}

func (s *stats) averageTurns() float64 {
	finished := s.games - s.unfinished
	if finished == 0 {
		return 0
	}
	return float64(s.turns) / float64(finished)
}

func (s *stats) report() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().
		Int("games", s.games).
		Int("unfinished", s.unfinished).
		Int("rolloffs", s.rolloffs).
		Float64("avg_turns", s.averageTurns()).
		Ints("wins_by_seat", s.winsBySeat).
		Msg("Simulation finished")
}

// Run plays every configured game and returns the aggregate. The first
// failing game cancels the rest.
func (sim *simulator) Run(ctx context.Context) (*stats, error) {
	st := &stats{winsBySeat: make([]int, sim.players)}

	log.Info().
		Int("games", sim.games).
		Int("players", sim.players).
		Int("concurrency", sim.concurrency).
		Int64("seed", sim.seed).
		Msg("Starting simulation")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sim.concurrency)
	for i := 0; i < sim.games; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := sim.play(gctx, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			st.add(r)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return st, err
	}
	return st, ctx.Err()
}

// play runs one game to its end or to the step limit.
func (sim *simulator) play(ctx context.Context, n int) (result, error) {
	players := make([]model.PlayerID, sim.players)
	agents := make(map[model.PlayerID]*agent.Random, sim.players)
	for i := range players {
		players[i] = model.PlayerID(i + 1)
		agents[players[i]] = agent.NewRandom(sim.seed+int64(n*sim.players+i), sim.rules, sim.agents)
	}

	id, err := sim.tables.CreateTable(ctx, players)
	if err != nil {
		return result{}, err
	}
	defer func() {
		if err := sim.tables.CloseTable(context.WithoutCancel(ctx), id); err != nil {
			log.Warn().Err(err).Str("table", id.String()).Msg("Failed to close table")
		}
	}()

	for step := 0; step < sim.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return result{}, err
		}

		eligible, err := sim.tables.Eligible(ctx, id)
		if err != nil {
			return result{}, err
		}
		if len(eligible) == 0 {
			return sim.outcome(ctx, id, players)
		}

		actor := eligible[step%len(eligible)]
		snap, err := sim.tables.Snapshot(ctx, id, actor)
		if err != nil {
			return result{}, err
		}
		intent, ok := agents[actor].Decide(snap)
		if !ok {
			return result{}, fmt.Errorf("player %d has nothing to do in %s", actor, snap.Phase)
		}
		if _, err := sim.tables.Submit(ctx, id, actor, intent); err != nil {
			return result{}, fmt.Errorf("player %d submitted %T in %s: %w", actor, intent, snap.Phase, err)
		}
	}

	log.Warn().
		Str("table", id.String()).
		Int("max_steps", sim.maxSteps).
		Msg("Game hit the step limit")
	return result{}, nil
}

func (sim *simulator) outcome(ctx context.Context, id uuid.UUID, players []model.PlayerID) (result, error) {
	snap, err := sim.tables.Snapshot(ctx, id, 0)
	if err != nil {
		return result{}, err
	}
	if snap.Phase != model.PhaseGameEnd {
		return result{}, fmt.Errorf("no eligible players in %s", snap.Phase)
	}

	r := result{winner: snap.Winner, rolloff: snap.Rolloff, turns: snap.Turn, finished: true}
	for i, p := range players {
		if p == snap.Winner {
			r.seat = i
		}
	}

	log.Info().
		Str("table", id.String()).
		Int64("winner", int64(r.winner)).
		Int("seat", r.seat).
		Bool("rolloff", r.rolloff).
		Int("turns", r.turns).
		Msg("Game result")
	return r, nil
}
