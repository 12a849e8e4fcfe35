package table

import "devils-dice/internal/model"

// Intent is something a player asks the table to do. The set of intents is
// closed; only the types in this file implement it.
type Intent interface {
	isIntent()
}

// Declaration is an intent that declares one of the seven actions.
type Declaration interface {
	Intent
	Kind() model.ActionKind
}

// DeclareRaiseHell claims Flame: gain tokens and reroll the hand.
type DeclareRaiseHell struct{}

// DeclareHarvest claims Skull: gain tokens.
type DeclareHarvest struct{}

// DeclareExtort claims Trident: take tokens from Target.
type DeclareExtort struct {
	Target model.PlayerID
}

// DeclareReapSoul claims Scythe: pay and steal a die from Target.
type DeclareReapSoul struct {
	Target model.PlayerID
}

// DeclarePentagram claims Pentagram: reroll the pool and harvest a
// Pentagram from it.
type DeclarePentagram struct{}

// DeclareImpsSet claims a set: gain a die and reroll the hand.
type DeclareImpsSet struct{}

// DeclareSatansSteal pays to take a die from Target without a claim. With
// PutInPool the die goes to the pool showing PoolFace instead.
type DeclareSatansSteal struct {
	Target    model.PlayerID
	PutInPool bool
	PoolFace  model.Face
}

// Challenge accuses the current claimant of bluffing.
type Challenge struct{}

// Block counters the action aimed at the submitting player.
type Block struct{}

// Pass declines to challenge or block.
type Pass struct{}

// ChooseOverflowFace places one overflowed die into the pool at Face.
type ChooseOverflowFace struct {
	Face model.Face
}

func (DeclareRaiseHell) isIntent()   {}
func (DeclareHarvest) isIntent()     {}
func (DeclareExtort) isIntent()      {}
func (DeclareReapSoul) isIntent()    {}
func (DeclarePentagram) isIntent()   {}
func (DeclareImpsSet) isIntent()     {}
func (DeclareSatansSteal) isIntent() {}
func (Challenge) isIntent()          {}
func (Block) isIntent()              {}
func (Pass) isIntent()               {}
func (ChooseOverflowFace) isIntent() {}

func (DeclareRaiseHell) Kind() model.ActionKind   { return model.ActionRaiseHell }
func (DeclareHarvest) Kind() model.ActionKind     { return model.ActionHarvest }
func (DeclareExtort) Kind() model.ActionKind      { return model.ActionExtort }
func (DeclareReapSoul) Kind() model.ActionKind    { return model.ActionReapSoul }
func (DeclarePentagram) Kind() model.ActionKind   { return model.ActionPentagram }
func (DeclareImpsSet) Kind() model.ActionKind     { return model.ActionImpsSet }
func (DeclareSatansSteal) Kind() model.ActionKind { return model.ActionSatansSteal }

// Declare builds the declaration for kind. Target is ignored for untargeted
// kinds; Satan's Steal is built as a plain steal.
func Declare(kind model.ActionKind, target model.PlayerID) Declaration {
	switch kind {
	case model.ActionRaiseHell:
		return DeclareRaiseHell{}
	case model.ActionHarvest:
		return DeclareHarvest{}
	case model.ActionExtort:
		return DeclareExtort{Target: target}
	case model.ActionReapSoul:
		return DeclareReapSoul{Target: target}
	case model.ActionPentagram:
		return DeclarePentagram{}
	case model.ActionImpsSet:
		return DeclareImpsSet{}
	case model.ActionSatansSteal:
		return DeclareSatansSteal{Target: target}
	}
	panic("table: unknown action kind " + string(kind))
}

func declaredTarget(d Declaration) model.PlayerID {
	switch in := d.(type) {
	case DeclareExtort:
		return in.Target
	case DeclareReapSoul:
		return in.Target
	case DeclareSatansSteal:
		return in.Target
	}
	return 0
}
