package table

import "errors"

// Errors returned for rejected intents. A rejected intent never changes the
// table.
var (
	ErrGameOver           = errors.New("game is over")
	ErrWrongPhase         = errors.New("intent not allowed in this phase")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNotEligible        = errors.New("player may not act now")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrInvalidFace        = errors.New("invalid face")
	ErrNotBlockable       = errors.New("action cannot be blocked")
	ErrNilIntent          = errors.New("nil intent")
)

// Errors returned when a table cannot be created.
var (
	ErrInvalidRules    = errors.New("invalid rules")
	ErrPlayerCount     = errors.New("unsupported number of players")
	ErrDuplicatePlayer = errors.New("duplicate player")
)
