package engine

import "impostor/internal/events"

// Event is a state transition reported by the engine. Events carry player
// ids only; the caller resolves names and chooses the audience.
type Event interface {
	Name() string
}

type PlayersReady struct {
	Ready int
	Total int
}

type AllReady struct{}

type RoundStarted struct {
	Round            int
	Order            []string
	CurrentSpeakerID string
	Active           []string
}

type SubmissionProgress struct {
	Submissions      map[string]string
	CurrentSpeakerID string
}

type VotingStarted struct {
	Round       int
	VoteRound   int
	Eligible    []string
	Active      []string
	Submissions map[string]string
}

type VoteProgress struct {
	VotesCast int
	Total     int
}

type VotingResult struct {
	EliminatedID string
	WasImpostor  bool
	Counts       map[string]int
}

type NoElimination struct {
	Reason string
	Tied   []string
}

// TurnChanged is the reveal-mode pointer update.
type TurnChanged struct {
	Index     int
	CurrentID string // empty once every player has taken a turn
	Ready     bool
}

func (PlayersReady) Name() string       { return events.PlayersReady }
func (AllReady) Name() string           { return events.AllReady }
func (RoundStarted) Name() string       { return events.RoundStarted }
func (SubmissionProgress) Name() string { return events.SubmissionProgress }
func (VotingStarted) Name() string      { return events.VotingStarted }
func (VoteProgress) Name() string       { return events.VoteProgress }
func (VotingResult) Name() string       { return events.VotingResult }
func (NoElimination) Name() string      { return events.NoElimination }
func (TurnChanged) Name() string        { return events.TurnChanged }

// Reasons attached to NoElimination and Result.
const (
	ReasonNoVotes        = "no_votes"
	ReasonTieTwice       = "tie_twice"
	ReasonImpostorCaught = "impostor_caught"
	ReasonLastTwo        = "last_two"
	ReasonImpostorLeft   = "impostor_left"
	ReasonHost           = "host"
)

// Result is the final outcome of a game.
type Result struct {
	ImpostorWon bool
	ImpostorID  string
	Word        string
	Reason      string
	Rounds      int
	Forced      bool
}

// Outcome is everything one transition produced, in emission order.
type Outcome struct {
	Events []Event
	Result *Result // set when the game is over
	Pause  bool    // entered the reveal stage; call Resume after the pacing delay
}

func (o *Outcome) emit(e Event) {
	o.Events = append(o.Events, e)
}
