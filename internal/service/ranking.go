package service

import (
	"context"

	"devils-dice/internal/model"
)

// Leaderboard limits.
const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)

// MatchReader reads archived matches.
// *repository.MatchRepository satisfies it.
type MatchReader interface {
	ListRecent(ctx context.Context, limit int) ([]*model.Match, error)
	TopWinners(ctx context.Context, limit int) ([]*model.WinnerRank, error)
}

// RankingService handles leaderboard queries over the match archive.
type RankingService struct {
	matches MatchReader
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(matches MatchReader) *RankingService {
	return &RankingService{matches: matches}
}

// TopWinners returns the players with the most won matches.
func (s *RankingService) TopWinners(ctx context.Context, limit int) ([]*model.WinnerRank, error) {
	return s.matches.TopWinners(ctx, clampLimit(limit))
}

// RecentMatches returns the most recently started matches.
func (s *RankingService) RecentMatches(ctx context.Context, limit int) ([]*model.Match, error) {
	return s.matches.ListRecent(ctx, clampLimit(limit))
}

// WinRate returns the share of played matches a rank won.
func WinRate(r *model.WinnerRank) float64 {
	if r == nil || r.Played == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Played)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRankingLimit
	}
	return min(limit, MaxRankingLimit)
}
