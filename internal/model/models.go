// Package model defines the data models shared by the Devil's Dice engine
// and its archive.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidFace is returned when a string does not name one of the six faces.
var ErrInvalidFace = errors.New("invalid dice face")

// PlayerID identifies a seated player. The hosting platform owns the values.
type PlayerID int64

// DieID is the identity of a single die. Ids are allocated by the dice
// manager and never reused, so a rerolled die always gets a new id.
type DieID int64

// Face is one of the six symbols printed on every die.
type Face string

// Dice faces.
const (
	FaceFlame     Face = "flame"
	FacePentagram Face = "pentagram"
	FaceScythe    Face = "scythe"
	FaceTrident   Face = "trident"
	FaceSkull     Face = "skull"
	FaceImp       Face = "imp"
)

// FaceCount is the number of distinct faces on a die.
const FaceCount = 6

// Faces returns all six faces in canonical order.
func Faces() []Face {
	return []Face{FaceFlame, FacePentagram, FaceScythe, FaceTrident, FaceSkull, FaceImp}
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	switch f {
	case FaceFlame, FacePentagram, FaceScythe, FaceTrident, FaceSkull, FaceImp:
		return true
	}
	return false
}

// ParseFace converts a string into a Face.
func ParseFace(s string) (Face, error) {
	f := Face(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFace, s)
	}
	return f, nil
}

// Die is a single die owned by a hand or by the pool.
type Die struct {
	ID   DieID `json:"id"`
	Face Face  `json:"face"`
}

// ActionKind is one of the seven declarable actions.
type ActionKind string

// Action kinds.
const (
	ActionRaiseHell   ActionKind = "raise_hell"
	ActionHarvest     ActionKind = "harvest_skulls"
	ActionExtort      ActionKind = "extort"
	ActionReapSoul    ActionKind = "reap_soul"
	ActionPentagram   ActionKind = "pentagram"
	ActionImpsSet     ActionKind = "imps_set"
	ActionSatansSteal ActionKind = "satans_steal"
)

// ActionKinds returns the seven action kinds in declaration-menu order.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionRaiseHell,
		ActionHarvest,
		ActionExtort,
		ActionReapSoul,
		ActionPentagram,
		ActionImpsSet,
		ActionSatansSteal,
	}
}

// Targeted reports whether the action names a target player.
func (k ActionKind) Targeted() bool {
	return k == ActionExtort || k == ActionReapSoul || k == ActionSatansSteal
}

// Blockable reports whether the target of the action may block it.
func (k ActionKind) Blockable() bool {
	return k == ActionExtort || k == ActionReapSoul
}

// Challengeable reports whether opponents may challenge the action's claim.
func (k ActionKind) Challengeable() bool {
	return k != ActionSatansSteal
}

// Phase is the state of the turn state machine.
type Phase string

// Game phases.
const (
	PhaseSetup              Phase = "setup"
	PhasePlayerTurn         Phase = "player_turn"
	PhaseChallengeWindow    Phase = "challenge_window"
	PhaseResolveChallenge   Phase = "resolve_challenge"
	PhaseBlockWindow        Phase = "block_window"
	PhaseResolveAction      Phase = "resolve_action"
	PhaseCheckWin           Phase = "check_win"
	PhaseChooseOverflowFace Phase = "choose_overflow_face"
	PhaseRolloff            Phase = "rolloff"
	PhaseGameEnd            Phase = "game_end"
)

// Interactive reports whether the phase waits for player intents.
func (p Phase) Interactive() bool {
	switch p {
	case PhasePlayerTurn, PhaseChallengeWindow, PhaseBlockWindow, PhaseChooseOverflowFace:
		return true
	}
	return false
}

// Match is an archived game.
type Match struct {
	ID         uuid.UUID  `db:"id"`
	Players    []int64    `db:"players"`
	Winner     *int64     `db:"winner"`
	Rolloff    bool       `db:"rolloff"`
	Turns      int        `db:"turns"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
}

// Finished reports whether the match has a recorded result.
func (m *Match) Finished() bool {
	return m.FinishedAt != nil
}

// MatchEvent is one archived engine event.
type MatchEvent struct {
	ID        int64     `db:"id"`
	MatchID   uuid.UUID `db:"match_id"`
	Seq       int       `db:"seq"`
	Type      string    `db:"type"`
	PlayerID  int64     `db:"player_id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// WinnerRank is a player's win tally across archived matches.
type WinnerRank struct {
	PlayerID int64 `db:"player_id"`
	Wins     int   `db:"wins"`
	Played   int   `db:"played"`
}
