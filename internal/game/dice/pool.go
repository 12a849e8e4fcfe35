// Package dice owns every die in a game: the players' hidden hands and the
// shared pool. It enforces the hand-size cap and reports overflow instead of
// discarding dice.
package dice

import (
	"fmt"

	"devils-dice/internal/model"
)

// DefaultMaxHand is the largest number of dice a hand may hold.
const DefaultMaxHand = 6

// Overflow is a gain that did not fit in a player's hand. The owner of the
// turn must let the player place Count dice into the pool.
type Overflow struct {
	Player model.PlayerID
	Count  int
}

// Manager tracks the dice of one table. It is not safe for concurrent use.
type Manager struct {
	roller  Roller
	maxHand int
	nextID  model.DieID
	seats   []model.PlayerID
	hands   map[model.PlayerID][]model.Die
	pool    []model.Die
}

// NewManager creates a manager with empty hands for every player and an
// empty pool. A maxHand of zero or less selects DefaultMaxHand.
func NewManager(roller Roller, maxHand int, players []model.PlayerID) *Manager {
	if maxHand <= 0 {
		maxHand = DefaultMaxHand
	}
	m := &Manager{
		roller:  roller,
		maxHand: maxHand,
		seats:   append([]model.PlayerID(nil), players...),
		hands:   make(map[model.PlayerID][]model.Die, len(players)),
	}
	for _, p := range players {
		m.hands[p] = nil
	}
	return m
}

// MaxHand returns the hand-size cap.
func (m *Manager) MaxHand() int {
	return m.maxHand
}

// Players returns the seated players in seat order.
func (m *Manager) Players() []model.PlayerID {
	return append([]model.PlayerID(nil), m.seats...)
}

// Seated reports whether the player has a hand at this table.
func (m *Manager) Seated(p model.PlayerID) bool {
	_, ok := m.hands[p]
	return ok
}

// Hand returns a copy of the player's dice.
func (m *Manager) Hand(p model.PlayerID) []model.Die {
	return append([]model.Die(nil), m.hand(p)...)
}

// HandFaces returns the faces currently in the player's hand.
func (m *Manager) HandFaces(p model.PlayerID) []model.Face {
	return facesOf(m.hand(p))
}

// HandSize returns the number of dice in the player's hand.
func (m *Manager) HandSize(p model.PlayerID) int {
	return len(m.hand(p))
}

// HasRoom reports whether the player's hand can take n more dice.
func (m *Manager) HasRoom(p model.PlayerID, n int) bool {
	return len(m.hand(p))+n <= m.maxHand
}

// Pool returns a copy of the pool's dice.
func (m *Manager) Pool() []model.Die {
	return append([]model.Die(nil), m.pool...)
}

// PoolFaces returns the faces currently in the pool.
func (m *Manager) PoolFaces() []model.Face {
	return facesOf(m.pool)
}

// AddDice rolls n fresh dice into the player's hand. When the hand cannot
// take all n, the hand is left untouched and the gain is returned as an
// Overflow for the caller to defer.
func (m *Manager) AddDice(p model.PlayerID, n int) *Overflow {
	if n <= 0 {
		return nil
	}
	if !m.HasRoom(p, n) {
		return &Overflow{Player: p, Count: n}
	}
	for i := 0; i < n; i++ {
		m.hands[p] = append(m.hands[p], m.roll())
	}
	m.check(p)
	return nil
}

// AddDieWithFace adds one die showing face, following the same capacity
// rule as AddDice.
func (m *Manager) AddDieWithFace(p model.PlayerID, face model.Face) *Overflow {
	if !m.HasRoom(p, 1) {
		return &Overflow{Player: p, Count: 1}
	}
	m.hands[p] = append(m.hands[p], m.newDie(face))
	m.check(p)
	return nil
}

// RemoveDice deletes up to n dice from the player's hand and returns how
// many were removed. Removing from an empty hand is a no-op.
func (m *Manager) RemoveDice(p model.PlayerID, n int) int {
	hand := m.hand(p)
	if n > len(hand) {
		n = len(hand)
	}
	if n <= 0 {
		return 0
	}
	m.hands[p] = hand[:len(hand)-n]
	return n
}

// RerollHand replaces every die in the hand with a freshly rolled die.
func (m *Manager) RerollHand(p model.PlayerID) []model.Die {
	n := len(m.hand(p))
	hand := make([]model.Die, 0, n)
	for i := 0; i < n; i++ {
		hand = append(hand, m.roll())
	}
	m.hands[p] = hand
	return append([]model.Die(nil), hand...)
}

// StealDie moves one die from one hand to another and rerolls both hands.
// If from is empty nothing happens and stolen is false. If to is full the
// die is only taken from from, and the gain comes back as an Overflow.
func (m *Manager) StealDie(from, to model.PlayerID) (stolen bool, overflow *Overflow) {
	m.hand(to)
	if m.RemoveDice(from, 1) == 0 {
		return false, nil
	}
	if !m.HasRoom(to, 1) {
		return true, &Overflow{Player: to, Count: 1}
	}
	m.hands[to] = append(m.hands[to], m.roll())
	m.RerollHand(from)
	m.RerollHand(to)
	m.check(to)
	return true, nil
}

// SendToPool removes one die from the player and adds one die to the pool.
// The pool die shows face, or a fresh roll when face is empty. It returns
// false when the hand was already empty.
func (m *Manager) SendToPool(p model.PlayerID, face model.Face) (model.Die, bool) {
	if m.RemoveDice(p, 1) == 0 {
		return model.Die{}, false
	}
	return m.AddToPool(face), true
}

// AddToPool inserts a die into the pool. An empty face rolls a fresh one.
func (m *Manager) AddToPool(face model.Face) model.Die {
	var d model.Die
	if face == "" {
		d = m.roll()
	} else {
		d = m.newDie(face)
	}
	m.pool = append(m.pool, d)
	return d
}

// RerollPool rerolls every pool die in place and returns the ids of the
// dice that landed on Pentagram, in pool order.
func (m *Manager) RerollPool() []model.DieID {
	var pentagrams []model.DieID
	for i := range m.pool {
		m.pool[i].Face = m.roller.Roll()
		if m.pool[i].Face == model.FacePentagram {
			pentagrams = append(pentagrams, m.pool[i].ID)
		}
	}
	return pentagrams
}

// TakeFromPool removes a specific die from the pool.
func (m *Manager) TakeFromPool(id model.DieID) (model.Die, bool) {
	for i, d := range m.pool {
		if d.ID == id {
			m.pool = append(m.pool[:i], m.pool[i+1:]...)
			return d, true
		}
	}
	return model.Die{}, false
}

// SetHand replaces the player's hand with dice showing the given faces.
// Collaborators use it to restore a saved table.
func (m *Manager) SetHand(p model.PlayerID, faces ...model.Face) {
	m.hand(p)
	hand := make([]model.Die, 0, len(faces))
	for _, f := range faces {
		hand = append(hand, m.newDie(f))
	}
	m.hands[p] = hand
	m.check(p)
}

// SetPool replaces the pool with dice showing the given faces.
func (m *Manager) SetPool(faces ...model.Face) {
	pool := make([]model.Die, 0, len(faces))
	for _, f := range faces {
		pool = append(pool, m.newDie(f))
	}
	m.pool = pool
}

func (m *Manager) hand(p model.PlayerID) []model.Die {
	hand, ok := m.hands[p]
	if !ok {
		panic(fmt.Sprintf("dice: player %d is not seated", p))
	}
	return hand
}

func (m *Manager) check(p model.PlayerID) {
	if n := len(m.hands[p]); n > m.maxHand {
		panic(fmt.Sprintf("dice: player %d holds %d dice, max is %d", p, n, m.maxHand))
	}
}

func (m *Manager) roll() model.Die {
	return m.newDie(m.roller.Roll())
}

func (m *Manager) newDie(face model.Face) model.Die {
	m.nextID++
	return model.Die{ID: m.nextID, Face: face}
}

func facesOf(dice []model.Die) []model.Face {
	faces := make([]model.Face, len(dice))
	for i, d := range dice {
		faces[i] = d.Face
	}
	return faces
}
