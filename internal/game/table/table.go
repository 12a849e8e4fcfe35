// Package table runs one game of Devil's Dice.
//
// A Table is a phase machine. Players submit intents; the table validates an
// intent completely against the current phase before changing anything,
// applies it, then runs the system phases (challenge resolution, action
// resolution, win check, rolloff) until it needs another player's input.
// A Table is not safe for concurrent use.
package table

import (
	"fmt"

	"devils-dice/internal/game"
	"devils-dice/internal/game/claim"
	"devils-dice/internal/game/dice"
	"devils-dice/internal/game/token"
	"devils-dice/internal/game/win"
	"devils-dice/internal/model"
)

// TurnContext is the scratch state of the action being resolved.
type TurnContext struct {
	Declarer   model.PlayerID
	Action     model.ActionKind
	Target     model.PlayerID
	PutInPool  bool
	PoolFace   model.Face
	Blocker    model.PlayerID
	Challenger model.PlayerID

	// Blocking is true while the block claim, not the action claim, is the
	// one open to challenge.
	Blocking bool

	// Overflows are gains still waiting for a pool face, in the order they
	// arose. There is at most one entry per player.
	Overflows []dice.Overflow
}

func (tc *TurnContext) claimant() model.PlayerID {
	if tc.Blocking {
		return tc.Blocker
	}
	return tc.Declarer
}

func (tc *TurnContext) claim() claim.Claim {
	if tc.Blocking {
		return claim.ForBlock(tc.Action)
	}
	return claim.ForAction(tc.Action)
}

// Table is the state of one game.
type Table struct {
	rules  Rules
	seats  []model.PlayerID
	dice   *dice.Manager
	tokens *token.Ledger
	eval   *win.Evaluator
	sink   game.Sink

	phase   model.Phase
	current int
	turns   int
	turn    *TurnContext

	// waiting holds the players who may still answer the open window.
	waiting []model.PlayerID
	tied    []model.PlayerID

	winner  model.PlayerID
	rolloff bool

	seq    int
	events []game.Event
}

// New seats players in the given order and runs setup: every player opens
// with the starting tokens and a freshly rolled starting hand. The first
// player is then on turn.
func New(rules Rules, players []model.PlayerID, roller dice.Roller, sink game.Sink) (*Table, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(players) < rules.MinPlayers || len(players) > rules.MaxPlayers {
		return nil, fmt.Errorf("%w: %d, want %d..%d", ErrPlayerCount, len(players), rules.MinPlayers, rules.MaxPlayers)
	}
	seen := make(map[model.PlayerID]bool, len(players))
	for _, p := range players {
		if p == 0 {
			return nil, fmt.Errorf("%w: player id 0 is reserved", ErrInvalidTarget)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePlayer, p)
		}
		seen[p] = true
	}
	if sink == nil {
		sink = game.Discard
	}

	t := &Table{
		rules:  rules,
		seats:  append([]model.PlayerID(nil), players...),
		dice:   dice.NewManager(roller, rules.MaxHand, players),
		tokens: token.NewLedger(),
		sink:   sink,
		phase:  model.PhaseSetup,
	}
	t.eval = win.NewEvaluator(t.dice)
	t.setup()
	t.events = nil
	return t, nil
}

func (t *Table) setup() {
	t.emit(game.Event{Type: game.EventGameStarted, Count: len(t.seats), Phase: model.PhaseSetup})
	for _, p := range t.seats {
		t.tokens.Open(p, t.rules.StartingTokens)
		t.dice.AddDice(p, t.rules.StartingDice)
		t.emit(game.Event{Type: game.EventTokensChanged, Player: p, Tokens: t.tokens.Balance(p)})
		t.emitHand(p)
	}
	t.startTurn()
}

// Submit applies an intent from actor and runs the table until it waits for
// input again. It returns the events committed by the intent. A rejected
// intent returns an error and leaves the table unchanged.
func (t *Table) Submit(actor model.PlayerID, in Intent) ([]game.Event, error) {
	if err := t.validate(actor, in); err != nil {
		return nil, err
	}

	t.events = nil
	t.apply(actor, in)
	t.run()

	events := t.events
	t.events = nil
	return events, nil
}

func (t *Table) validate(actor model.PlayerID, in Intent) error {
	if in == nil {
		return ErrNilIntent
	}
	if t.phase == model.PhaseGameEnd {
		return ErrGameOver
	}
	if !t.dice.Seated(actor) {
		return fmt.Errorf("%w: player %d is not seated", ErrNotEligible, actor)
	}

	switch in := in.(type) {
	case Declaration:
		return t.validateDeclaration(actor, in)
	case Challenge:
		if t.phase != model.PhaseChallengeWindow {
			return fmt.Errorf("%w: challenge in %s", ErrWrongPhase, t.phase)
		}
		if !t.isWaiting(actor) {
			return fmt.Errorf("%w: player %d cannot challenge", ErrNotEligible, actor)
		}
	case Block:
		if t.turn != nil && !t.turn.Action.Blockable() {
			return fmt.Errorf("%w: %s", ErrNotBlockable, t.turn.Action)
		}
		if t.phase != model.PhaseBlockWindow {
			return fmt.Errorf("%w: block in %s", ErrWrongPhase, t.phase)
		}
		if actor != t.turn.Target {
			return fmt.Errorf("%w: only player %d may block", ErrNotEligible, t.turn.Target)
		}
	case Pass:
		if t.phase != model.PhaseChallengeWindow && t.phase != model.PhaseBlockWindow {
			return fmt.Errorf("%w: pass in %s", ErrWrongPhase, t.phase)
		}
		if !t.isWaiting(actor) {
			return fmt.Errorf("%w: player %d has nothing to pass on", ErrNotEligible, actor)
		}
	case ChooseOverflowFace:
		if t.phase != model.PhaseChooseOverflowFace {
			return fmt.Errorf("%w: overflow face in %s", ErrWrongPhase, t.phase)
		}
		if actor != t.turn.Overflows[0].Player {
			return fmt.Errorf("%w: overflow belongs to player %d", ErrNotEligible, t.turn.Overflows[0].Player)
		}
		if !in.Face.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFace, in.Face)
		}
	default:
		panic(fmt.Sprintf("table: unknown intent %T", in))
	}
	return nil
}

func (t *Table) validateDeclaration(actor model.PlayerID, d Declaration) error {
	if t.phase != model.PhasePlayerTurn {
		return fmt.Errorf("%w: declare in %s", ErrWrongPhase, t.phase)
	}
	if actor != t.Current() {
		return fmt.Errorf("%w: player %d is on turn", ErrNotYourTurn, t.Current())
	}
	kind := d.Kind()
	if kind.Targeted() {
		target := declaredTarget(d)
		if target == actor || !t.dice.Seated(target) {
			return fmt.Errorf("%w: %s on player %d", ErrInvalidTarget, kind, target)
		}
	}
	if cost := t.rules.Cost(kind); !t.tokens.Has(actor, cost) {
		return fmt.Errorf("%w: %s costs %d, player %d has %d", ErrInsufficientTokens, kind, cost, actor, t.tokens.Balance(actor))
	}
	if s, ok := d.(DeclareSatansSteal); ok && s.PutInPool && !s.PoolFace.Valid() {
		return fmt.Errorf("%w: pool face %q", ErrInvalidFace, s.PoolFace)
	}
	return nil
}

func (t *Table) apply(actor model.PlayerID, in Intent) {
	switch in := in.(type) {
	case Declaration:
		t.declare(actor, in)
	case Challenge:
		t.turn.Challenger = actor
		t.waiting = nil
		t.emit(game.Event{Type: game.EventChallengeIssued, Player: actor, Target: t.turn.claimant(), Action: t.turn.Action})
		t.setPhase(model.PhaseResolveChallenge)
	case Block:
		t.turn.Blocker = actor
		t.turn.Blocking = true
		t.emit(game.Event{Type: game.EventBlockDeclared, Player: actor, Target: t.turn.Declarer, Action: t.turn.Action})
		t.openChallengeWindow()
	case Pass:
		t.removeWaiting(actor)
		t.emit(game.Event{Type: game.EventPassed, Player: actor, Phase: t.phase})
		if len(t.waiting) > 0 {
			return
		}
		if t.phase == model.PhaseBlockWindow {
			t.setPhase(model.PhaseResolveAction)
			return
		}
		if t.turn.Blocking {
			t.blocked()
			return
		}
		t.actionClaimStands()
	case ChooseOverflowFace:
		t.placeOverflow(in.Face)
	default:
		panic(fmt.Sprintf("table: unknown intent %T", in))
	}
}

func (t *Table) declare(actor model.PlayerID, d Declaration) {
	kind := d.Kind()
	t.turn = &TurnContext{
		Declarer: actor,
		Action:   kind,
		Target:   declaredTarget(d),
	}
	if s, ok := d.(DeclareSatansSteal); ok {
		t.turn.PutInPool = s.PutInPool
		t.turn.PoolFace = s.PoolFace
	}
	ev := game.Event{Type: game.EventActionDeclared, Player: actor, Target: t.turn.Target, Action: kind}
	if t.turn.PutInPool {
		ev.Face = t.turn.PoolFace
	}
	t.emit(ev)

	switch {
	case !kind.Challengeable():
		t.setPhase(model.PhaseResolveAction)
	case kind == model.ActionImpsSet && t.dice.HandSize(actor) <= 1:
		t.setPhase(model.PhaseResolveAction)
	default:
		t.openChallengeWindow()
	}
}

// openChallengeWindow lets every player except the claimant challenge.
func (t *Table) openChallengeWindow() {
	claimant := t.turn.claimant()
	t.waiting = make([]model.PlayerID, 0, len(t.seats)-1)
	for _, p := range t.seats {
		if p != claimant {
			t.waiting = append(t.waiting, p)
		}
	}
	t.setPhase(model.PhaseChallengeWindow)
}

// actionClaimStands moves an unchallenged or proven action on to its block
// window or its resolution.
func (t *Table) actionClaimStands() {
	if t.turn.Action.Blockable() {
		t.waiting = []model.PlayerID{t.turn.Target}
		t.setPhase(model.PhaseBlockWindow)
		return
	}
	t.setPhase(model.PhaseResolveAction)
}

func (t *Table) blocked() {
	t.emit(game.Event{Type: game.EventActionBlocked, Player: t.turn.Blocker, Target: t.turn.Declarer, Action: t.turn.Action})
	t.setPhase(model.PhaseCheckWin)
}

// run advances through system phases until a player must act or the game
// ends.
func (t *Table) run() {
	for {
		switch t.phase {
		case model.PhaseResolveChallenge:
			t.resolveChallenge()
		case model.PhaseResolveAction:
			t.resolveAction()
		case model.PhaseCheckWin:
			t.checkWin()
		case model.PhaseRolloff:
			t.runRolloff()
		default:
			return
		}
	}
}

func (t *Table) resolveChallenge() {
	tc := t.turn
	claimant := tc.claimant()
	faces := t.dice.HandFaces(claimant)
	t.emit(game.Event{Type: game.EventHandRevealed, Player: claimant, Faces: faces})

	if !claim.Satisfies(tc.claim(), faces) {
		t.emit(game.Event{Type: game.EventChallengeSucceeded, Player: tc.Challenger, Target: claimant, Action: tc.Action})
		t.steal(claimant, tc.Challenger)
		if tc.Blocking {
			// The block was a bluff, so the action goes through.
			tc.Blocking = false
			t.setPhase(model.PhaseResolveAction)
			return
		}
		t.emit(game.Event{Type: game.EventActionCancelled, Player: tc.Declarer, Action: tc.Action})
		t.setPhase(model.PhaseCheckWin)
		return
	}

	t.emit(game.Event{Type: game.EventChallengeFailed, Player: tc.Challenger, Target: claimant, Action: tc.Action})
	t.sendToPool(tc.Challenger, "")
	if tc.Blocking {
		t.blocked()
		return
	}
	t.actionClaimStands()
}

func (t *Table) checkWin() {
	if t.turn != nil && len(t.turn.Overflows) > 0 {
		t.setPhase(model.PhaseChooseOverflowFace)
		return
	}
	winners := t.eval.FindWinners()
	switch len(winners) {
	case 0:
		t.endTurn()
	case 1:
		t.finish(winners[0])
	default:
		t.tied = winners
		t.setPhase(model.PhaseRolloff)
	}
}

func (t *Table) runRolloff() {
	winner, counts := t.eval.Rolloff(t.tied)
	for _, p := range t.tied {
		t.emit(game.Event{Type: game.EventRolloff, Player: p, Face: win.TiebreakFace, Count: counts[p]})
	}
	t.rolloff = true
	t.finish(winner)
}

func (t *Table) finish(winner model.PlayerID) {
	t.winner = winner
	t.turn = nil
	t.waiting = nil
	t.turns++
	t.emit(game.Event{Type: game.EventWinnerDeclared, Player: winner, Count: t.turns})
	t.setPhase(model.PhaseGameEnd)
}

func (t *Table) endTurn() {
	t.turn = nil
	t.waiting = nil
	t.current = (t.current + 1) % len(t.seats)
	t.turns++
	t.startTurn()
}

func (t *Table) startTurn() {
	t.emit(game.Event{Type: game.EventTurnStarted, Player: t.Current(), Count: t.turns + 1})
	t.setPhase(model.PhasePlayerTurn)
}

func (t *Table) setPhase(p model.Phase) {
	if t.phase == p {
		return
	}
	t.phase = p
	t.emit(game.Event{Type: game.EventPhaseChanged, Phase: p})
}

func (t *Table) emit(e game.Event) {
	t.seq++
	e.Seq = t.seq
	t.events = append(t.events, e)
	t.sink.Emit(e)
}

func (t *Table) isWaiting(p model.PlayerID) bool {
	for _, w := range t.waiting {
		if w == p {
			return true
		}
	}
	return false
}

func (t *Table) removeWaiting(p model.PlayerID) {
	for i, w := range t.waiting {
		if w == p {
			t.waiting = append(t.waiting[:i], t.waiting[i+1:]...)
			return
		}
	}
}
