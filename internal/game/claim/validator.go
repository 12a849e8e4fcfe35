// Package claim decides whether a hidden hand backs a declared action or
// block. Every function here is pure.
package claim

import "devils-dice/internal/model"

// Wildcard is the face that matches any set in an Imps Set claim.
const Wildcard = model.FaceImp

// Claim is an assertion about a hand. Action is the declared action; when
// Block is true the claim is the target's counter-claim against Action.
type Claim struct {
	Action model.ActionKind
	Block  bool
}

// ForAction returns the claim made by declaring kind.
func ForAction(kind model.ActionKind) Claim {
	return Claim{Action: kind}
}

// ForBlock returns the claim made by blocking kind.
func ForBlock(kind model.ActionKind) Claim {
	return Claim{Action: kind, Block: true}
}

// RequiredFace returns the single face a claim needs. The second result is
// false for claims without a single face: Imps Set, Satan's Steal and blocks
// against unblockable actions.
func RequiredFace(c Claim) (model.Face, bool) {
	if c.Block {
		switch c.Action {
		case model.ActionExtort:
			return model.FaceTrident, true
		case model.ActionReapSoul:
			return model.FacePentagram, true
		}
		return "", false
	}
	switch c.Action {
	case model.ActionRaiseHell:
		return model.FaceFlame, true
	case model.ActionHarvest:
		return model.FaceSkull, true
	case model.ActionExtort:
		return model.FaceTrident, true
	case model.ActionReapSoul:
		return model.FaceScythe, true
	case model.ActionPentagram:
		return model.FacePentagram, true
	}
	return "", false
}

// Satisfies reports whether a hand showing faces backs the claim.
func Satisfies(c Claim, faces []model.Face) bool {
	if !c.Block && c.Action == model.ActionImpsSet {
		return IsImpsSet(faces)
	}
	face, ok := RequiredFace(c)
	if !ok {
		return false
	}
	for _, f := range faces {
		if f == face {
			return true
		}
	}
	return false
}

// IsImpsSet reports whether a non-empty hand is all Imps, or all of its
// non-Imp dice share one face.
func IsImpsSet(faces []model.Face) bool {
	if len(faces) == 0 {
		return false
	}
	var set model.Face
	for _, f := range faces {
		if f == Wildcard {
			continue
		}
		if set == "" {
			set = f
			continue
		}
		if f != set {
			return false
		}
	}
	return true
}
