package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"devils-dice/internal/model"
)

// multisets returns every face multiset of size 0..maxSize as sorted slices.
func multisets(maxSize int) [][]model.Face {
	faces := model.Faces()
	var out [][]model.Face
	var build func(start int, cur []model.Face)
	build = func(start int, cur []model.Face) {
		out = append(out, append([]model.Face(nil), cur...))
		if len(cur) == maxSize {
			return
		}
		for i := start; i < len(faces); i++ {
			build(i, append(cur, faces[i]))
		}
	}
	build(0, nil)
	return out
}

func contains(faces []model.Face, face model.Face) bool {
	for _, f := range faces {
		if f == face {
			return true
		}
	}
	return false
}

func distinctNonImp(faces []model.Face) int {
	seen := make(map[model.Face]bool)
	for _, f := range faces {
		if f != model.FaceImp {
			seen[f] = true
		}
	}
	return len(seen)
}

func TestMultisetCount(t *testing.T) {
	// C(6+k-1, k) summed over k = 0..6.
	assert.Len(t, multisets(6), 924)
}

func TestSatisfiesExhaustive(t *testing.T) {
	single := map[model.ActionKind]model.Face{
		model.ActionRaiseHell: model.FaceFlame,
		model.ActionHarvest:   model.FaceSkull,
		model.ActionExtort:    model.FaceTrident,
		model.ActionReapSoul:  model.FaceScythe,
		model.ActionPentagram: model.FacePentagram,
	}
	blocks := map[model.ActionKind]model.Face{
		model.ActionExtort:   model.FaceTrident,
		model.ActionReapSoul: model.FacePentagram,
	}

	for _, hand := range multisets(6) {
		for _, kind := range model.ActionKinds() {
			got := Satisfies(ForAction(kind), hand)

			var want bool
			switch kind {
			case model.ActionImpsSet:
				want = len(hand) > 0 && distinctNonImp(hand) <= 1
			case model.ActionSatansSteal:
				want = false
			default:
				want = contains(hand, single[kind])
			}
			if got != want {
				t.Fatalf("Satisfies(%s, %v) = %v, want %v", kind, hand, got, want)
			}

			blockFace, blockable := blocks[kind]
			gotBlock := Satisfies(ForBlock(kind), hand)
			wantBlock := blockable && contains(hand, blockFace)
			if gotBlock != wantBlock {
				t.Fatalf("Satisfies(block %s, %v) = %v, want %v", kind, hand, gotBlock, wantBlock)
			}
		}
	}
}

func TestIsImpsSet(t *testing.T) {
	tests := []struct {
		name  string
		faces []model.Face
		want  bool
	}{
		{"empty hand", nil, false},
		{"single imp", []model.Face{model.FaceImp}, true},
		{"single flame", []model.Face{model.FaceFlame}, true},
		{"all imps", []model.Face{model.FaceImp, model.FaceImp, model.FaceImp}, true},
		{"imps and one face", []model.Face{model.FaceImp, model.FaceSkull, model.FaceSkull}, true},
		{"matching faces", []model.Face{model.FaceTrident, model.FaceTrident}, true},
		{"mixed faces", []model.Face{model.FaceTrident, model.FaceSkull}, false},
		{"imps with mixed faces", []model.Face{model.FaceImp, model.FaceTrident, model.FaceSkull}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsImpsSet(tt.faces))
		})
	}
}

func TestRequiredFace(t *testing.T) {
	face, ok := RequiredFace(ForBlock(model.ActionReapSoul))
	assert.True(t, ok)
	assert.Equal(t, model.FacePentagram, face)

	_, ok = RequiredFace(ForBlock(model.ActionRaiseHell))
	assert.False(t, ok)

	_, ok = RequiredFace(ForAction(model.ActionSatansSteal))
	assert.False(t, ok)
}

// TestSatisfiesOrderIndependentProperty checks that the verdict depends only
// on the multiset of faces, never on their order or on earlier calls.
func TestSatisfiesOrderIndependentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hand := rapid.SliceOfN(rapid.SampledFrom(model.Faces()), 0, 6).Draw(t, "hand")
		kind := rapid.SampledFrom(model.ActionKinds()).Draw(t, "kind")
		block := rapid.Bool().Draw(t, "block")
		c := Claim{Action: kind, Block: block}

		first := Satisfies(c, hand)

		reversed := make([]model.Face, len(hand))
		for i, f := range hand {
			reversed[len(hand)-1-i] = f
		}
		if Satisfies(c, reversed) != first {
			t.Fatalf("verdict for %v changed when reversed", hand)
		}
		if Satisfies(c, hand) != first {
			t.Fatalf("verdict for %v changed on second call", hand)
		}
	})
}
