// Package win checks the victory condition and breaks ties.
package win

import "devils-dice/internal/model"

// TiebreakFace is the face counted during a rolloff.
const TiebreakFace = model.FaceImp

// Board is the read-only view of the dice the evaluator needs.
type Board interface {
	Players() []model.PlayerID
	HandFaces(p model.PlayerID) []model.Face
	PoolFaces() []model.Face
}

// Evaluator applies the win rules to a board.
type Evaluator struct {
	board Board
}

// NewEvaluator creates an evaluator over board.
func NewEvaluator(board Board) *Evaluator {
	return &Evaluator{board: board}
}

// HasWon reports whether the player's hand together with the pool shows all
// six faces.
func (e *Evaluator) HasWon(p model.PlayerID) bool {
	seen := make(map[model.Face]struct{}, model.FaceCount)
	for _, f := range e.board.HandFaces(p) {
		seen[f] = struct{}{}
	}
	for _, f := range e.board.PoolFaces() {
		seen[f] = struct{}{}
	}
	return len(seen) == model.FaceCount
}

// Missing returns the faces the player still needs, in canonical order.
func (e *Evaluator) Missing(p model.PlayerID) []model.Face {
	seen := make(map[model.Face]bool, model.FaceCount)
	for _, f := range e.board.HandFaces(p) {
		seen[f] = true
	}
	for _, f := range e.board.PoolFaces() {
		seen[f] = true
	}
	var missing []model.Face
	for _, f := range model.Faces() {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// FindWinners returns every player that has won, in seat order.
func (e *Evaluator) FindWinners() []model.PlayerID {
	var winners []model.PlayerID
	for _, p := range e.board.Players() {
		if e.HasWon(p) {
			winners = append(winners, p)
		}
	}
	return winners
}

// CountTiebreak counts Imps across the player's hand and the pool.
func (e *Evaluator) CountTiebreak(p model.PlayerID) int {
	n := 0
	for _, f := range e.board.HandFaces(p) {
		if f == TiebreakFace {
			n++
		}
	}
	for _, f := range e.board.PoolFaces() {
		if f == TiebreakFace {
			n++
		}
	}
	return n
}

// Rolloff picks one winner among tied players: the highest tiebreak count,
// and the first such player in the given order when counts are equal.
// It also returns every player's count.
func (e *Evaluator) Rolloff(tied []model.PlayerID) (model.PlayerID, map[model.PlayerID]int) {
	if len(tied) == 0 {
		panic("win: rolloff without tied players")
	}
	counts := make(map[model.PlayerID]int, len(tied))
	winner := tied[0]
	best := -1
	for _, p := range tied {
		n := e.CountTiebreak(p)
		counts[p] = n
		if n > best {
			best = n
			winner = p
		}
	}
	return winner, counts
}
