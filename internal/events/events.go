package events

import "time"

// Outbound message types. Game messages go to a room group unless noted.
const (
	Connected          = "connected" // unicast
	RoomCreated        = "roomCreated"
	RoomJoined         = "roomJoined" // unicast
	PlayerJoined       = "playerJoined"
	PlayerLeft         = "playerLeft"
	JoinError          = "joinError"   // unicast
	GameStarted        = "gameStarted" // unicast, payload varies by role
	PlayersReady       = "playersReady"
	AllReady           = "allReady"
	RoundStarted       = "roundStarted"
	SubmissionProgress = "submissionProgress"
	VotingStarted      = "votingStarted"
	VoteProgress       = "voteProgress"
	VotingResult       = "votingResult"
	NoElimination      = "noElimination"
	GameResult         = "gameResult"
	TurnChanged        = "turnChanged"
	Error              = "error" // unicast

	ChatClear   = "chatClear"
	ChatJoined  = "chatJoined" // unicast
	ChatSystem  = "chatSystem"
	ChatMessage = "chatMessage"
	ChatTyping  = "chatTyping"
)

// Message is the JSON envelope written to every connection.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func New(typ string, data any) Message {
	return Message{Type: typ, Data: data}
}

// GameRecord describes a finished game for the history sink.
type GameRecord struct {
	RoomCode     string
	Category     string
	Subtopic     string
	Word         string
	ImpostorID   string
	ImpostorName string
	ImpostorWon  bool
	Reason       string
	Rounds       int
	Forced       bool           // ended by the host
	Points       map[string]int // player name -> points awarded this game
	EndedAt      time.Time
}

type Bus struct {
	GameResults chan GameRecord
}

func NewBus() *Bus {
	return &Bus{
		GameResults: make(chan GameRecord, 64),
	}
}

// Publish never blocks; it reports false when the buffer is full.
func (b *Bus) Publish(rec GameRecord) bool {
	if b == nil {
		return false
	}
	select {
	case b.GameResults <- rec:
		return true
	default:
		return false
	}
}
