// Package main runs Devil's Dice simulations between random agents.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"devils-dice/internal/config"
	"devils-dice/internal/game"
	"devils-dice/internal/lobby"
	"devils-dice/internal/pkg/db"
	"devils-dice/internal/pkg/lock"
	"devils-dice/internal/repository"
	"devils-dice/internal/service"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(cfg.Log.ZerologLevel())
	if cfg.Log.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		matches service.MatchStore
		events  service.EventStore
		ranking *service.RankingService
	)
	if cfg.Database.Enabled {
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		if err := db.Migrate(ctx, dbPool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}

		matchRepo := repository.NewMatchRepository(dbPool.Pool)
		matches = matchRepo
		events = repository.NewEventRepository(dbPool.Pool)
		ranking = service.NewRankingService(matchRepo)
	} else {
		log.Info().Msg("Match archive disabled")
	}

	tables := service.NewTableService(
		lobby.NewRegistry(),
		lock.NewTableLock(),
		matches,
		events,
		cfg.Game.Rules(),
		cfg.Service.LockTimeout,
	)
	tables.SetSink(game.NewLogSink(log.Logger))

	sim := newSimulator(tables, cfg)
	stats, err := sim.Run(ctx)
	stats.report()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Simulation interrupted")
			return
		}
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	if ranking != nil {
		logLeaderboard(ctx, ranking)
	}
}

func logLeaderboard(ctx context.Context, ranking *service.RankingService) {
	ranks, err := ranking.TopWinners(ctx, service.DefaultRankingLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load leaderboard")
		return
	}
	for i, r := range ranks {
		log.Info().
			Int("rank", i+1).
			Int64("player", r.PlayerID).
			Int("wins", r.Wins).
			Int("played", r.Played).
			Float64("win_rate", service.WinRate(r)).
			Msg("Leaderboard")
	}
}
