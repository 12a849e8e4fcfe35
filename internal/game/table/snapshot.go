package table

import (
	"devils-dice/internal/game/dice"
	"devils-dice/internal/model"
)

// PlayerView is the public state of one seat.
type PlayerView struct {
	ID     model.PlayerID `json:"id"`
	Dice   int            `json:"dice"`
	Tokens int            `json:"tokens"`
}

// Snapshot is what one viewer may know about the table. Only the viewer's
// own faces are included; other hands appear as counts.
type Snapshot struct {
	Viewer     model.PlayerID   `json:"viewer"`
	Phase      model.Phase      `json:"phase"`
	Turn       int              `json:"turn"`
	Current    model.PlayerID   `json:"current"`
	Hand       []model.Die      `json:"hand"`
	Players    []PlayerView     `json:"players"`
	Pool       []model.Die      `json:"pool"`
	Declarer   model.PlayerID   `json:"declarer,omitempty"`
	Action     model.ActionKind `json:"action,omitempty"`
	Target     model.PlayerID   `json:"target,omitempty"`
	Blocker    model.PlayerID   `json:"blocker,omitempty"`
	Challenger model.PlayerID   `json:"challenger,omitempty"`
	Blocking   bool             `json:"blocking,omitempty"`
	Eligible   []model.PlayerID `json:"eligible"`
	Overflow   *dice.Overflow   `json:"overflow,omitempty"`
	Winner     model.PlayerID   `json:"winner,omitempty"`
	Rolloff    bool             `json:"rolloff,omitempty"`
}

// Player returns the public view of p.
func (s *Snapshot) Player(p model.PlayerID) (PlayerView, bool) {
	for _, v := range s.Players {
		if v.ID == p {
			return v, true
		}
	}
	return PlayerView{}, false
}

// CanAct reports whether the viewer is eligible to submit an intent.
func (s *Snapshot) CanAct() bool {
	for _, p := range s.Eligible {
		if p == s.Viewer {
			return true
		}
	}
	return false
}

// Snapshot returns the table as seen by viewer. A viewer that is not seated
// gets every public field and no hand.
func (t *Table) Snapshot(viewer model.PlayerID) Snapshot {
	s := Snapshot{
		Viewer:   viewer,
		Phase:    t.phase,
		Turn:     t.turns,
		Current:  t.Current(),
		Pool:     t.dice.Pool(),
		Eligible: t.Eligible(),
		Winner:   t.winner,
		Rolloff:  t.rolloff,
	}
	if !t.Over() {
		s.Turn++
	}
	if t.dice.Seated(viewer) {
		s.Hand = t.dice.Hand(viewer)
	}
	for _, p := range t.seats {
		s.Players = append(s.Players, PlayerView{
			ID:     p,
			Dice:   t.dice.HandSize(p),
			Tokens: t.tokens.Balance(p),
		})
	}
	if tc := t.turn; tc != nil {
		s.Declarer = tc.Declarer
		s.Action = tc.Action
		s.Target = tc.Target
		s.Blocker = tc.Blocker
		s.Challenger = tc.Challenger
		s.Blocking = tc.Blocking
		if len(tc.Overflows) > 0 {
			ov := tc.Overflows[0]
			s.Overflow = &ov
		}
	}
	return s
}

// Eligible returns the players who may submit an intent now.
func (t *Table) Eligible() []model.PlayerID {
	switch t.phase {
	case model.PhasePlayerTurn:
		return []model.PlayerID{t.Current()}
	case model.PhaseChallengeWindow, model.PhaseBlockWindow:
		return append([]model.PlayerID(nil), t.waiting...)
	case model.PhaseChooseOverflowFace:
		return []model.PlayerID{t.turn.Overflows[0].Player}
	}
	return nil
}

// Phase returns the active phase.
func (t *Table) Phase() model.Phase {
	return t.phase
}

// Current returns the player on turn.
func (t *Table) Current() model.PlayerID {
	return t.seats[t.current]
}

// Players returns the seats in turn order.
func (t *Table) Players() []model.PlayerID {
	return append([]model.PlayerID(nil), t.seats...)
}

// Rules returns the rules the table was created with.
func (t *Table) Rules() Rules {
	return t.rules
}

// Turns returns the number of completed turns. The winning turn counts
// as completed.
func (t *Table) Turns() int {
	return t.turns
}

// Winner returns the winner once the game has ended.
func (t *Table) Winner() (model.PlayerID, bool) {
	return t.winner, t.phase == model.PhaseGameEnd
}

// WonByRolloff reports whether the winner was decided by a rolloff.
func (t *Table) WonByRolloff() bool {
	return t.rolloff
}

// Over reports whether the game has ended.
func (t *Table) Over() bool {
	return t.phase == model.PhaseGameEnd
}
