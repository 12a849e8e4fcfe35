package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"devils-dice/internal/model"
)

const (
	alice model.PlayerID = 1
	bob   model.PlayerID = 2
)

func newTestManager(faces ...model.Face) *Manager {
	return NewManager(NewSequenceRoller(faces...), DefaultMaxHand, []model.PlayerID{alice, bob})
}

func TestAddDice(t *testing.T) {
	m := newTestManager(model.FaceFlame, model.FaceSkull)

	require.Nil(t, m.AddDice(alice, 2))
	assert.Equal(t, []model.Face{model.FaceFlame, model.FaceSkull}, m.HandFaces(alice))
	assert.Equal(t, 0, m.HandSize(bob))

	require.Nil(t, m.AddDice(alice, 4))
	assert.Equal(t, 6, m.HandSize(alice))

	overflow := m.AddDice(alice, 1)
	require.NotNil(t, overflow)
	assert.Equal(t, Overflow{Player: alice, Count: 1}, *overflow)
	assert.Equal(t, 6, m.HandSize(alice), "overflowing gain must not touch the hand")
}

func TestAddDiceOverflowLeavesHandUntouched(t *testing.T) {
	m := newTestManager()
	m.SetHand(alice, model.FaceFlame, model.FaceFlame, model.FaceFlame, model.FaceFlame, model.FaceFlame)
	before := m.Hand(alice)

	overflow := m.AddDice(alice, 2)
	require.NotNil(t, overflow)
	assert.Equal(t, 2, overflow.Count)
	assert.Equal(t, before, m.Hand(alice))
}

func TestAddDieWithFace(t *testing.T) {
	m := newTestManager()
	require.Nil(t, m.AddDieWithFace(bob, model.FacePentagram))
	assert.Equal(t, []model.Face{model.FacePentagram}, m.HandFaces(bob))

	m.SetHand(bob, model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp)
	overflow := m.AddDieWithFace(bob, model.FacePentagram)
	require.NotNil(t, overflow)
	assert.Equal(t, Overflow{Player: bob, Count: 1}, *overflow)
}

func TestRemoveDiceFloorsAtZero(t *testing.T) {
	m := newTestManager()
	m.SetHand(alice, model.FaceFlame, model.FaceSkull)

	assert.Equal(t, 2, m.RemoveDice(alice, 5))
	assert.Equal(t, 0, m.HandSize(alice))
	assert.Equal(t, 0, m.RemoveDice(alice, 1))
}

func TestRerollHandAllocatesNewDice(t *testing.T) {
	m := newTestManager(model.FaceImp)
	m.SetHand(alice, model.FaceFlame, model.FaceSkull, model.FaceTrident)
	before := m.Hand(alice)

	after := m.RerollHand(alice)
	require.Len(t, after, 3)
	for _, d := range after {
		assert.Equal(t, model.FaceImp, d.Face)
		for _, old := range before {
			assert.NotEqual(t, old.ID, d.ID, "rerolled dice must get new ids")
		}
	}
}

func TestStealDie(t *testing.T) {
	tests := []struct {
		name         string
		from         []model.Face
		to           []model.Face
		wantStolen   bool
		wantOverflow *Overflow
		wantFrom     int
		wantTo       int
	}{
		{
			name:       "moves one die",
			from:       []model.Face{model.FaceFlame, model.FaceSkull},
			to:         []model.Face{model.FaceImp},
			wantStolen: true,
			wantFrom:   1,
			wantTo:     2,
		},
		{
			name:     "empty victim is a no-op",
			to:       []model.Face{model.FaceImp},
			wantFrom: 0,
			wantTo:   1,
		},
		{
			name:         "full stealer defers the gain",
			from:         []model.Face{model.FaceFlame, model.FaceSkull},
			to:           []model.Face{model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp, model.FaceImp},
			wantStolen:   true,
			wantOverflow: &Overflow{Player: bob, Count: 1},
			wantFrom:     1,
			wantTo:       6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(model.FaceScythe)
			m.SetHand(alice, tt.from...)
			m.SetHand(bob, tt.to...)

			stolen, overflow := m.StealDie(alice, bob)
			assert.Equal(t, tt.wantStolen, stolen)
			assert.Equal(t, tt.wantOverflow, overflow)
			assert.Equal(t, tt.wantFrom, m.HandSize(alice))
			assert.Equal(t, tt.wantTo, m.HandSize(bob))
		})
	}
}

func TestStealDieRerollsBothHands(t *testing.T) {
	m := newTestManager(model.FaceScythe)
	m.SetHand(alice, model.FaceFlame, model.FaceSkull)
	m.SetHand(bob, model.FaceImp)

	stolen, overflow := m.StealDie(alice, bob)
	require.True(t, stolen)
	require.Nil(t, overflow)
	assert.Equal(t, []model.Face{model.FaceScythe}, m.HandFaces(alice))
	assert.Equal(t, []model.Face{model.FaceScythe, model.FaceScythe}, m.HandFaces(bob))
}

func TestSendToPool(t *testing.T) {
	m := newTestManager(model.FaceTrident)
	m.SetHand(alice, model.FaceFlame, model.FaceSkull)

	d, ok := m.SendToPool(alice, model.FaceImp)
	require.True(t, ok)
	assert.Equal(t, model.FaceImp, d.Face)
	assert.Equal(t, 1, m.HandSize(alice))

	d, ok = m.SendToPool(alice, "")
	require.True(t, ok)
	assert.Equal(t, model.FaceTrident, d.Face)
	assert.Equal(t, []model.Face{model.FaceImp, model.FaceTrident}, m.PoolFaces())

	_, ok = m.SendToPool(alice, model.FaceImp)
	assert.False(t, ok)
	assert.Len(t, m.Pool(), 2)
}

func TestRerollPoolReportsPentagrams(t *testing.T) {
	m := newTestManager(model.FaceFlame, model.FacePentagram, model.FacePentagram)
	m.SetPool(model.FaceImp, model.FaceImp, model.FaceImp)
	pool := m.Pool()

	ids := m.RerollPool()
	require.Len(t, ids, 2)
	assert.Equal(t, pool[1].ID, ids[0])
	assert.Equal(t, pool[2].ID, ids[1])

	d, ok := m.TakeFromPool(ids[0])
	require.True(t, ok)
	assert.Equal(t, model.FacePentagram, d.Face)
	assert.Len(t, m.Pool(), 2)

	_, ok = m.TakeFromPool(ids[0])
	assert.False(t, ok)
}

func TestUnknownPlayerPanics(t *testing.T) {
	m := newTestManager()
	assert.Panics(t, func() { m.AddDice(99, 1) })
	assert.Panics(t, func() { m.HandSize(99) })
}

func TestSetHandAboveCapPanics(t *testing.T) {
	m := NewManager(NewSequenceRoller(), 2, []model.PlayerID{alice})
	assert.Panics(t, func() {
		m.SetHand(alice, model.FaceImp, model.FaceImp, model.FaceImp)
	})
}

// TestHandBoundsProperty applies random sequences of dice operations and
// checks that every hand stays within 0..MaxHand and no die id is shared.
func TestHandBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		m := NewManager(NewRandRoller(seed), DefaultMaxHand, []model.PlayerID{alice, bob})
		players := []model.PlayerID{alice, bob}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			p := rapid.SampledFrom(players).Draw(t, "player")
			other := alice
			if p == alice {
				other = bob
			}
			switch rapid.IntRange(0, 6).Draw(t, "op") {
			case 0:
				m.AddDice(p, rapid.IntRange(1, 3).Draw(t, "n"))
			case 1:
				m.RemoveDice(p, rapid.IntRange(1, 3).Draw(t, "n"))
			case 2:
				before := m.HandSize(p)
				m.RerollHand(p)
				if m.HandSize(p) != before {
					t.Fatalf("reroll changed hand size from %d to %d", before, m.HandSize(p))
				}
			case 3:
				m.StealDie(other, p)
			case 4:
				m.SendToPool(p, "")
			case 5:
				m.AddDieWithFace(p, rapid.SampledFrom(model.Faces()).Draw(t, "face"))
			case 6:
				if ids := m.RerollPool(); len(ids) > 0 {
					m.TakeFromPool(ids[0])
				}
			}

			seen := make(map[model.DieID]bool)
			for _, pl := range players {
				if n := m.HandSize(pl); n < 0 || n > DefaultMaxHand {
					t.Fatalf("hand of %d has %d dice", pl, n)
				}
				for _, d := range m.Hand(pl) {
					if seen[d.ID] {
						t.Fatalf("die %d owned twice", d.ID)
					}
					seen[d.ID] = true
				}
			}
			for _, d := range m.Pool() {
				if seen[d.ID] {
					t.Fatalf("pool die %d also owned by a hand", d.ID)
				}
				seen[d.ID] = true
			}
		}
	})
}

func TestRandRollerIsDeterministic(t *testing.T) {
	a := NewRandRoller(42)
	b := NewRandRoller(42)
	for i := 0; i < 100; i++ {
		face := a.Roll()
		require.True(t, face.Valid())
		require.Equal(t, face, b.Roll())
	}
}
