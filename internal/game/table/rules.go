package table

import (
	"fmt"

	"devils-dice/internal/game/dice"
	"devils-dice/internal/model"
)

// Rules holds the tunable amounts of a game.
type Rules struct {
	MinPlayers      int
	MaxPlayers      int
	MaxHand         int
	StartingTokens  int
	StartingDice    int
	RaiseHellTokens int
	HarvestTokens   int
	ExtortTokens    int
	ReapSoulCost    int
	SatansStealCost int
}

// DefaultRules returns the standard rules.
func DefaultRules() Rules {
	return Rules{
		MinPlayers:      2,
		MaxPlayers:      6,
		MaxHand:         dice.DefaultMaxHand,
		StartingTokens:  1,
		StartingDice:    2,
		RaiseHellTokens: 1,
		HarvestTokens:   2,
		ExtortTokens:    3,
		ReapSoulCost:    2,
		SatansStealCost: 6,
	}
}

// Cost returns the tokens a declaration of kind costs.
func (r Rules) Cost(kind model.ActionKind) int {
	switch kind {
	case model.ActionReapSoul:
		return r.ReapSoulCost
	case model.ActionSatansSteal:
		return r.SatansStealCost
	}
	return 0
}

// Validate checks that the rules describe a playable game.
func (r Rules) Validate() error {
	switch {
	case r.MinPlayers < 2:
		return fmt.Errorf("%w: min players %d is below 2", ErrInvalidRules, r.MinPlayers)
	case r.MaxPlayers < r.MinPlayers:
		return fmt.Errorf("%w: max players %d is below min players %d", ErrInvalidRules, r.MaxPlayers, r.MinPlayers)
	case r.MaxHand < 1:
		return fmt.Errorf("%w: max hand %d", ErrInvalidRules, r.MaxHand)
	case r.StartingDice < 0 || r.StartingDice > r.MaxHand:
		return fmt.Errorf("%w: starting dice %d outside 0..%d", ErrInvalidRules, r.StartingDice, r.MaxHand)
	case r.StartingTokens < 0, r.RaiseHellTokens < 0, r.HarvestTokens < 0, r.ExtortTokens < 0,
		r.ReapSoulCost < 0, r.SatansStealCost < 0:
		return fmt.Errorf("%w: token amounts must not be negative", ErrInvalidRules)
	}
	return nil
}
