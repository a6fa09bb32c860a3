package engine

import "errors"

// Kind classifies a rejected action. Every kind is recoverable by the caller.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindPhase
	KindTurn
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindPhase:
		return "phase"
	case KindTurn:
		return "turn"
	case KindNotFound:
		return "not_found"
	default:
		return "validation"
	}
}

// Error is a rejected action. It never implies a state change.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf reports the kind of a rejection, or false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

var (
	ErrWrongPhase    = NewError(KindPhase, "action not allowed in the current phase")
	ErrWrongMode     = NewError(KindPhase, "action not available in this game mode")
	ErrNotYourTurn   = NewError(KindTurn, "not your turn")
	ErrNotPlayer     = NewError(KindAuthorization, "not a player in this game")
	ErrEliminated    = NewError(KindAuthorization, "eliminated players cannot vote")
	ErrEmptyClue     = NewError(KindValidation, "clue cannot be empty")
	ErrInvalidTarget = NewError(KindValidation, "invalid vote target")
)
