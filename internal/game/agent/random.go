// Package agent provides computer players for simulations and tests.
package agent

import (
	"math/rand"

	"devils-dice/internal/game/claim"
	"devils-dice/internal/game/table"
	"devils-dice/internal/model"
)

// Config tunes how often a Random agent takes risks.
type Config struct {
	ChallengeRate float64
	BlockRate     float64
	BluffRate     float64
}

// DefaultConfig returns moderate rates.
func DefaultConfig() Config {
	return Config{ChallengeRate: 0.2, BlockRate: 0.5, BluffRate: 0.3}
}

// Random picks a legal intent at random, leaning toward claims its hand
// supports. It only reads the snapshot it is given, so it never sees other
// players' faces.
type Random struct {
	rng   *rand.Rand
	rules table.Rules
	cfg   Config
}

// NewRandom creates an agent with its own seeded source.
func NewRandom(seed int64, rules table.Rules, cfg Config) *Random {
	return &Random{
		rng:   rand.New(rand.NewSource(seed)),
		rules: rules,
		cfg:   cfg,
	}
}

// Decide returns the intent for the snapshot's viewer, or false when the
// viewer has nothing to do.
func (a *Random) Decide(s table.Snapshot) (table.Intent, bool) {
	if !s.CanAct() {
		return nil, false
	}
	switch s.Phase {
	case model.PhasePlayerTurn:
		return a.declare(s), true
	case model.PhaseChallengeWindow:
		if a.chance(a.cfg.ChallengeRate) {
			return table.Challenge{}, true
		}
		return table.Pass{}, true
	case model.PhaseBlockWindow:
		if claim.Satisfies(claim.ForBlock(s.Action), handFaces(s)) || a.chance(a.cfg.BlockRate) {
			return table.Block{}, true
		}
		return table.Pass{}, true
	case model.PhaseChooseOverflowFace:
		return table.ChooseOverflowFace{Face: a.overflowFace(s)}, true
	}
	return nil, false
}

func (a *Random) declare(s table.Snapshot) table.Intent {
	me, _ := s.Player(s.Viewer)
	faces := handFaces(s)

	var honest, bluffs []model.ActionKind
	for _, kind := range model.ActionKinds() {
		if me.Tokens < a.rules.Cost(kind) {
			continue
		}
		if kind == model.ActionSatansSteal || claim.Satisfies(claim.ForAction(kind), faces) {
			honest = append(honest, kind)
		} else {
			bluffs = append(bluffs, kind)
		}
	}

	choices := honest
	if len(choices) == 0 || (len(bluffs) > 0 && a.chance(a.cfg.BluffRate)) {
		choices = bluffs
	}
	kind := choices[a.rng.Intn(len(choices))]

	if kind == model.ActionSatansSteal && a.rng.Intn(2) == 0 {
		return table.DeclareSatansSteal{
			Target:    a.target(s, kind),
			PutInPool: true,
			PoolFace:  a.overflowFace(s),
		}
	}
	return table.Declare(kind, a.target(s, kind))
}

// target picks the richest opponent for Extort and the one holding the most
// dice otherwise. Ties are broken at random.
func (a *Random) target(s table.Snapshot, kind model.ActionKind) model.PlayerID {
	if !kind.Targeted() {
		return 0
	}
	var best []model.PlayerID
	bestScore := -1
	for _, p := range s.Players {
		if p.ID == s.Viewer {
			continue
		}
		score := p.Dice
		if kind == model.ActionExtort {
			score = p.Tokens
		}
		switch {
		case score > bestScore:
			best = []model.PlayerID{p.ID}
			bestScore = score
		case score == bestScore:
			best = append(best, p.ID)
		}
	}
	return best[a.rng.Intn(len(best))]
}

// overflowFace returns a face the viewer still needs, so the pool die helps
// complete their set.
func (a *Random) overflowFace(s table.Snapshot) model.Face {
	seen := make(map[model.Face]bool)
	for _, d := range s.Hand {
		seen[d.Face] = true
	}
	for _, d := range s.Pool {
		seen[d.Face] = true
	}
	var missing []model.Face
	for _, f := range model.Faces() {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return claim.Wildcard
	}
	return missing[a.rng.Intn(len(missing))]
}

func (a *Random) chance(rate float64) bool {
	return a.rng.Float64() < rate
}

func handFaces(s table.Snapshot) []model.Face {
	faces := make([]model.Face, len(s.Hand))
	for i, d := range s.Hand {
		faces[i] = d.Face
	}
	return faces
}
