// Package game defines the events a Devil's Dice table emits and the sinks
// that receive them.
//
// Every committed effect of an intent produces one Event. Presentation
// layers, loggers and archives subscribe through a Sink; the table does not
// know who is listening.
package game

import "devils-dice/internal/model"

// EventType names what happened.
type EventType string

// Event types.
const (
	EventGameStarted        EventType = "game_started"
	EventTurnStarted        EventType = "turn_started"
	EventActionDeclared     EventType = "action_declared"
	EventPassed             EventType = "passed"
	EventChallengeIssued    EventType = "challenge_issued"
	EventHandRevealed       EventType = "hand_revealed"
	EventChallengeSucceeded EventType = "challenge_succeeded"
	EventChallengeFailed    EventType = "challenge_failed"
	EventBlockDeclared      EventType = "block_declared"
	EventActionBlocked      EventType = "action_blocked"
	EventActionCancelled    EventType = "action_cancelled"
	EventActionResolved     EventType = "action_resolved"
	EventDiceRerolled       EventType = "dice_rerolled"
	EventDiceCountChanged   EventType = "dice_count_changed"
	EventTokensChanged      EventType = "tokens_changed"
	EventDieStolen          EventType = "die_stolen"
	EventDieToPool          EventType = "die_to_pool"
	EventPoolRerolled       EventType = "pool_rerolled"
	EventPoolDieHarvested   EventType = "pool_die_harvested"
	EventOverflowPending    EventType = "overflow_pending"
	EventOverflowResolved   EventType = "overflow_resolved"
	EventPhaseChanged       EventType = "phase_changed"
	EventRolloff            EventType = "rolloff"
	EventWinnerDeclared     EventType = "winner_declared"
)

// Event is one committed effect.
//
// Fields that do not apply to a type are left zero. Private events carry
// hidden information (a player's own faces) and must only be shown to
// Player.
type Event struct {
	Seq     int              `json:"seq"`
	Type    EventType        `json:"type"`
	Player  model.PlayerID   `json:"player,omitempty"`
	Target  model.PlayerID   `json:"target,omitempty"`
	Action  model.ActionKind `json:"action,omitempty"`
	Face    model.Face       `json:"face,omitempty"`
	Faces   []model.Face     `json:"faces,omitempty"`
	Count   int              `json:"count,omitempty"`
	Tokens  int              `json:"tokens,omitempty"`
	Phase   model.Phase      `json:"phase,omitempty"`
	Private bool             `json:"private,omitempty"`
}

// VisibleTo reports whether viewer may see the event.
func (e Event) VisibleTo(viewer model.PlayerID) bool {
	return !e.Private || e.Player == viewer
}

// Filter returns the events viewer may see.
func Filter(events []Event, viewer model.PlayerID) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.VisibleTo(viewer) {
			out = append(out, e)
		}
	}
	return out
}
