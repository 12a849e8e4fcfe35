// Package token keeps the token balance of every seated player.
package token

import (
	"fmt"

	"devils-dice/internal/model"
)

// Ledger holds one non-negative balance per player. It is not safe for
// concurrent use.
type Ledger struct {
	balances map[model.PlayerID]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[model.PlayerID]int)}
}

// Open creates the player's account with an initial balance.
func (l *Ledger) Open(p model.PlayerID, initial int) {
	if initial < 0 {
		panic(fmt.Sprintf("token: negative opening balance %d for player %d", initial, p))
	}
	l.balances[p] = initial
}

// Balance returns the player's current balance.
func (l *Ledger) Balance(p model.PlayerID) int {
	b, ok := l.balances[p]
	if !ok {
		panic(fmt.Sprintf("token: player %d has no account", p))
	}
	return b
}

// Has reports whether the player can afford amount.
func (l *Ledger) Has(p model.PlayerID, amount int) bool {
	return l.Balance(p) >= amount
}

// Credit adds amount to the player's balance.
func (l *Ledger) Credit(p model.PlayerID, amount int) int {
	if amount <= 0 {
		return l.Balance(p)
	}
	l.balances[p] = l.Balance(p) + amount
	return l.balances[p]
}

// Debit removes up to amount from the player's balance and returns how much
// was actually taken. The balance never drops below zero.
func (l *Ledger) Debit(p model.PlayerID, amount int) int {
	b := l.Balance(p)
	if amount > b {
		amount = b
	}
	if amount <= 0 {
		return 0
	}
	l.balances[p] = b - amount
	return amount
}

// Transfer moves min(amount, balance(from)) tokens from one player to
// another and returns the amount moved.
func (l *Ledger) Transfer(from, to model.PlayerID, amount int) int {
	l.Balance(to)
	moved := l.Debit(from, amount)
	if moved > 0 {
		l.balances[to] += moved
	}
	return moved
}

// Balances returns a copy of every balance.
func (l *Ledger) Balances() map[model.PlayerID]int {
	out := make(map[model.PlayerID]int, len(l.balances))
	for p, b := range l.balances {
		out[p] = b
	}
	return out
}
