package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"devils-dice/internal/model"
)

// Roller produces die faces. Implementations must draw every face
// uniformly and independently.
type Roller interface {
	Roll() model.Face
}

// RandRoller rolls faces from a seeded math/rand source.
// A RandRoller is not safe for concurrent use; each table owns its own.
type RandRoller struct {
	rng   *rand.Rand
	faces []model.Face
}

// NewRandRoller creates a roller seeded with seed. The same seed always
// produces the same sequence of faces.
func NewRandRoller(seed int64) *RandRoller {
	return &RandRoller{
		rng:   rand.New(rand.NewSource(seed)),
		faces: model.Faces(),
	}
}

// Roll returns a uniformly random face.
func (r *RandRoller) Roll() model.Face {
	return r.faces[r.rng.Intn(len(r.faces))]
}

// Intn exposes the underlying source for callers that share the table's
// seed, such as simulation agents.
func (r *RandRoller) Intn(n int) int {
	return r.rng.Intn(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SequenceRoller returns a fixed sequence of faces, cycling when exhausted.
// Tests use it to script hands.
type SequenceRoller struct {
	faces []model.Face
	next  int
}

// NewSequenceRoller creates a roller that yields faces in order.
// With no faces it always rolls Imp.
func NewSequenceRoller(faces ...model.Face) *SequenceRoller {
	return &SequenceRoller{faces: faces}
}

// Roll returns the next scripted face.
func (r *SequenceRoller) Roll() model.Face {
	if len(r.faces) == 0 {
		return model.FaceImp
	}
	f := r.faces[r.next%len(r.faces)]
	r.next++
	return f
}
