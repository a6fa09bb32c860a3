package engine

import "slices"

type Stage string

const (
	StageReady  Stage = "ready"
	StageSubmit Stage = "submit"
	StageVote   Stage = "vote"
	StageReveal Stage = "reveal" // interstitial after an elimination
	StageOver   Stage = "over"
)

type Mode string

const (
	ModeRounds Mode = "rounds"
	ModeReveal Mode = "reveal"
)

// Game is the state of one game. It is not safe for concurrent use; the
// owner serializes every call.
type Game struct {
	Mode       Mode
	Word       string
	ImpostorID string

	Active      []string
	TurnOrder   []string
	Stage       Stage
	RoundNumber int
	SpeakIndex  int
	Submissions map[string]string
	Votes       map[string]string
	VoteRound   int
	Eligible    []string
	ReadySet    map[string]bool

	MaxClueLength int

	// reveal mode
	Order     []string
	TurnIndex int
}

// New creates a round-mode game in the ready stage. order is the rotated
// seat order and becomes both the speaking order and the active set.
func New(order []string, word, impostorID string, maxClueLength int) *Game {
	if maxClueLength <= 0 {
		maxClueLength = 40
	}
	return &Game{
		Mode:          ModeRounds,
		Word:          word,
		ImpostorID:    impostorID,
		Active:        slices.Clone(order),
		TurnOrder:     slices.Clone(order),
		Stage:         StageReady,
		Submissions:   map[string]string{},
		Votes:         map[string]string{},
		ReadySet:      map[string]bool{},
		MaxClueLength: maxClueLength,
	}
}

func (g *Game) IsActive(id string) bool {
	return slices.Contains(g.Active, id)
}

// CurrentSpeaker returns the id expected to submit next, or "".
func (g *Game) CurrentSpeaker() string {
	if g.Stage != StageSubmit || g.SpeakIndex >= len(g.TurnOrder) {
		return ""
	}
	return g.TurnOrder[g.SpeakIndex]
}

func (g *Game) Over() bool {
	return g.Stage == StageOver
}

func (g *Game) finish(out *Outcome, reason string, impostorWon bool) {
	g.Stage = StageOver
	out.Result = &Result{
		ImpostorWon: impostorWon,
		ImpostorID:  g.ImpostorID,
		Word:        g.Word,
		Reason:      reason,
		Rounds:      g.RoundNumber,
		Forced:      reason == ReasonHost,
	}
}

// ForceEnd ends the game with a declared outcome, bypassing voting.
func (g *Game) ForceEnd(impostorWon bool) (Outcome, error) {
	var out Outcome
	if g.Over() {
		return out, ErrWrongPhase
	}
	g.finish(&out, ReasonHost, impostorWon)
	return out, nil
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(v string) bool { return v == id })
}
