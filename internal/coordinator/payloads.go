package coordinator

import (
	"impostor/internal/engine"
	"impostor/internal/events"
	"impostor/internal/roles"
	"impostor/internal/rooms"
)

type roomPayload struct {
	RoomCode string         `json:"roomCode"`
	IsHost   bool           `json:"isHost"`
	Players  []rooms.Player `json:"players"`
}

type playerJoinedPayload struct {
	Player  rooms.Player   `json:"player"`
	Players []rooms.Player `json:"players"`
}

type playerLeftPayload struct {
	Player  rooms.Player   `json:"player"`
	Players []rooms.Player `json:"players"`
	HostID  string         `json:"hostId"`
}

type gameStartedPayload struct {
	Players    []rooms.Player  `json:"players"`
	Role       string          `json:"role"`
	Word       *string         `json:"word"`
	Theme      roles.Selection `json:"theme"`
	ImpostorID string          `json:"impostorId,omitempty"`
	Mode       engine.Mode     `json:"mode"`
}

type playerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type scoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type gameResultPayload struct {
	ImpostorWon bool         `json:"impostorWon"`
	Impostor    rooms.Player `json:"impostor"`
	Word        string       `json:"word"`
	Reason      string       `json:"reason"`
	Scores      []scoreEntry `json:"scores"`
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// ErrorMessage builds the unicast sent for a rejected action.
func ErrorMessage(typ string, err error) events.Message {
	p := errorPayload{Message: err.Error()}
	if kind, ok := engine.KindOf(err); ok {
		p.Kind = kind.String()
	}
	return events.New(typ, p)
}

func refs(room *rooms.Room, ids []string) []playerRef {
	out := make([]playerRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, playerRef{ID: id, Name: room.NameOf(id)})
	}
	return out
}

// translate turns an engine event into the room broadcast clients expect,
// resolving ids to names.
func translate(room *rooms.Room, ev engine.Event) events.Message {
	switch e := ev.(type) {
	case engine.PlayersReady:
		return events.New(e.Name(), map[string]int{"ready": e.Ready, "total": e.Total})
	case engine.AllReady:
		return events.New(e.Name(), nil)
	case engine.RoundStarted:
		return events.New(e.Name(), map[string]any{
			"round":            e.Round,
			"order":            refs(room, e.Order),
			"currentSpeakerId": e.CurrentSpeakerID,
			"activePlayers":    refs(room, e.Active),
		})
	case engine.SubmissionProgress:
		return events.New(e.Name(), map[string]any{
			"submissions":      e.Submissions,
			"currentSpeakerId": e.CurrentSpeakerID,
		})
	case engine.VotingStarted:
		return events.New(e.Name(), map[string]any{
			"round":         e.Round,
			"voteRound":     e.VoteRound,
			"eligible":      e.Eligible,
			"activePlayers": refs(room, e.Active),
			"submissions":   e.Submissions,
		})
	case engine.VoteProgress:
		return events.New(e.Name(), map[string]int{"votesCast": e.VotesCast, "total": e.Total})
	case engine.VotingResult:
		name := room.NameOf(e.EliminatedID)
		if name == "" {
			name = "Jugador"
		}
		return events.New(e.Name(), map[string]any{
			"eliminatedId":          e.EliminatedID,
			"eliminatedName":        name,
			"eliminatedWasImpostor": e.WasImpostor,
			"counts":                e.Counts,
		})
	case engine.NoElimination:
		data := map[string]any{"reason": e.Reason}
		if len(e.Tied) > 0 {
			data["tied"] = e.Tied
		}
		return events.New(e.Name(), data)
	case engine.TurnChanged:
		data := map[string]any{"currentPlayerIndex": e.Index, "isGameReady": e.Ready}
		if !e.Ready {
			data["currentPlayerName"] = room.NameOf(e.CurrentID)
		}
		return events.New(e.Name(), data)
	default:
		return events.New(ev.Name(), ev)
	}
}
