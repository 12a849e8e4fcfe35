package table

import (
	"fmt"

	"devils-dice/internal/game"
	"devils-dice/internal/game/dice"
	"devils-dice/internal/model"
)

// resolveAction applies the effect of the declared action. Costs are paid
// here, so an action that never resolves costs nothing.
func (t *Table) resolveAction() {
	tc := t.turn
	p := tc.Declarer

	switch tc.Action {
	case model.ActionRaiseHell:
		t.credit(p, t.rules.RaiseHellTokens)
		t.reroll(p)
	case model.ActionHarvest:
		t.credit(p, t.rules.HarvestTokens)
	case model.ActionExtort:
		if t.tokens.Transfer(tc.Target, p, t.rules.ExtortTokens) > 0 {
			t.emitTokens(tc.Target)
			t.emitTokens(p)
		}
	case model.ActionReapSoul:
		t.pay(p, t.rules.ReapSoulCost)
		t.steal(tc.Target, p)
	case model.ActionPentagram:
		t.harvestPentagram(p)
	case model.ActionImpsSet:
		if ov := t.dice.AddDice(p, 1); ov != nil {
			t.queueOverflow(*ov)
		}
		t.reroll(p)
	case model.ActionSatansSteal:
		t.pay(p, t.rules.SatansStealCost)
		if tc.PutInPool {
			t.sendToPool(tc.Target, tc.PoolFace)
		} else {
			t.steal(tc.Target, p)
		}
	default:
		panic(fmt.Sprintf("table: unknown action %q", tc.Action))
	}

	t.emit(game.Event{Type: game.EventActionResolved, Player: p, Target: tc.Target, Action: tc.Action})
	t.setPhase(model.PhaseCheckWin)
}

// harvestPentagram rerolls the pool and moves the first Pentagram that
// landed into the player's hand. A full hand still takes the die out of the
// pool and owes an overflow for it.
func (t *Table) harvestPentagram(p model.PlayerID) {
	ids := t.dice.RerollPool()
	t.emit(game.Event{Type: game.EventPoolRerolled, Player: p, Faces: t.dice.PoolFaces(), Count: len(ids)})
	if len(ids) == 0 {
		return
	}
	if _, ok := t.dice.TakeFromPool(ids[0]); !ok {
		panic(fmt.Sprintf("table: pool die %d vanished", ids[0]))
	}
	t.emit(game.Event{Type: game.EventPoolDieHarvested, Player: p, Face: model.FacePentagram})
	if ov := t.dice.AddDieWithFace(p, model.FacePentagram); ov != nil {
		t.queueOverflow(*ov)
		return
	}
	t.emitHand(p)
}

func (t *Table) credit(p model.PlayerID, amount int) {
	if amount <= 0 {
		return
	}
	t.tokens.Credit(p, amount)
	t.emitTokens(p)
}

func (t *Table) pay(p model.PlayerID, amount int) {
	if t.tokens.Debit(p, amount) > 0 {
		t.emitTokens(p)
	}
}

func (t *Table) reroll(p model.PlayerID) {
	t.dice.RerollHand(p)
	t.emitHand(p)
}

// steal moves a die from victim to thief. Both hands are rerolled unless the
// thief is full, in which case the thief owes an overflow instead.
func (t *Table) steal(victim, thief model.PlayerID) {
	stolen, ov := t.dice.StealDie(victim, thief)
	if !stolen {
		return
	}
	t.emit(game.Event{Type: game.EventDieStolen, Player: thief, Target: victim})
	t.emitHand(victim)
	if ov != nil {
		t.queueOverflow(*ov)
		return
	}
	t.emitHand(thief)
}

func (t *Table) sendToPool(p model.PlayerID, face model.Face) {
	d, ok := t.dice.SendToPool(p, face)
	if !ok {
		return
	}
	t.emit(game.Event{Type: game.EventDieToPool, Player: p, Face: d.Face})
	t.emit(game.Event{Type: game.EventDiceCountChanged, Player: p, Count: t.dice.HandSize(p)})
}

// queueOverflow records a gain that did not fit. A second overflow for the
// same player adds to the pending count; another player's waits its turn.
func (t *Table) queueOverflow(ov dice.Overflow) {
	tc := t.turn
	for i := range tc.Overflows {
		if tc.Overflows[i].Player == ov.Player {
			tc.Overflows[i].Count += ov.Count
			t.emit(game.Event{Type: game.EventOverflowPending, Player: ov.Player, Count: tc.Overflows[i].Count})
			return
		}
	}
	tc.Overflows = append(tc.Overflows, ov)
	t.emit(game.Event{Type: game.EventOverflowPending, Player: ov.Player, Count: ov.Count})
}

func (t *Table) placeOverflow(face model.Face) {
	tc := t.turn
	head := &tc.Overflows[0]
	d := t.dice.AddToPool(face)
	head.Count--
	t.emit(game.Event{Type: game.EventDieToPool, Player: head.Player, Face: d.Face})
	t.emit(game.Event{Type: game.EventOverflowResolved, Player: head.Player, Face: d.Face, Count: head.Count})
	if head.Count == 0 {
		tc.Overflows = tc.Overflows[1:]
	}
	t.setPhase(model.PhaseCheckWin)
}

// emitHand tells the owner their new faces and everyone else the count.
func (t *Table) emitHand(p model.PlayerID) {
	t.emit(game.Event{Type: game.EventDiceRerolled, Player: p, Faces: t.dice.HandFaces(p), Private: true})
	t.emit(game.Event{Type: game.EventDiceCountChanged, Player: p, Count: t.dice.HandSize(p)})
}

func (t *Table) emitTokens(p model.PlayerID) {
	t.emit(game.Event{Type: game.EventTokensChanged, Player: p, Tokens: t.tokens.Balance(p)})
}
