package server

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"impostor/internal/chat"
	"impostor/internal/coordinator"
	"impostor/internal/events"
	"impostor/internal/roles"
	"impostor/internal/wshub"
)

type createRoomData struct {
	PlayerName string `json:"playerName"`
}

type joinRoomData struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type roomData struct {
	RoomCode string `json:"roomCode"`
}

type startGameData struct {
	RoomCode string       `json:"roomCode"`
	Topic    string       `json:"topic"`
	Theme    *roles.Theme `json:"theme"`
	Mode     string       `json:"mode"`
}

type submitWordData struct {
	RoomCode string `json:"roomCode"`
	Word     string `json:"word"`
}

type castVoteData struct {
	RoomCode string `json:"roomCode"`
	TargetID string `json:"targetId"`
}

type gameEndedData struct {
	RoomCode    string `json:"roomCode"`
	ImpostorWon bool   `json:"impostorWon"`
}

type chatTypingData struct {
	RoomCode string `json:"roomCode"`
	IsTyping bool   `json:"isTyping"`
}

// decode unmarshals an optional payload; a missing payload leaves v zeroed.
func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errMalformed
	}
	return nil
}

// dispatch routes one inbound action. Join failures are answered with
// joinError, every other failure with error.
func (s *Server) dispatch(connID string, in wshub.Inbound, log zerolog.Logger) {
	log = log.With().Str("action", in.Type).Logger()
	errType := events.Error
	var err error

	switch in.Type {
	case "createRoom":
		var d createRoomData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.CreateRoom(connID, d.PlayerName)
		}
	case "joinRoom":
		errType = events.JoinError
		var d joinRoomData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.JoinRoom(connID, d.RoomCode, d.PlayerName)
		}
	case "leaveRoom":
		var d roomData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.LeaveRoom(connID, d.RoomCode)
		}
	case "startGame":
		var d startGameData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.StartGame(connID, coordinator.StartRequest{
				RoomCode: d.RoomCode,
				Topic:    d.Topic,
				Theme:    d.Theme,
				Mode:     d.Mode,
			})
		}
	case "playerReady":
		var d roomData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.PlayerReady(connID, d.RoomCode)
		}
	case "submitWord":
		var d submitWordData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.SubmitWord(connID, d.RoomCode, d.Word)
		}
	case "castVote":
		var d castVoteData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.CastVote(connID, d.RoomCode, d.TargetID)
		}
	case "nextTurn":
		var d roomData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.NextTurn(connID, d.RoomCode)
		}
	case "gameEnded":
		var d gameEndedData
		if err = decode(in.Data, &d); err == nil {
			err = s.Coord.GameEnded(connID, d.RoomCode, d.ImpostorWon)
		}
	case "joinChatRoom":
		var d joinRoomData
		if err = decode(in.Data, &d); err == nil {
			s.Chat.Join(connID, d.RoomCode, d.PlayerName)
		}
	case "chatMessage":
		var d chat.Message
		if err = decode(in.Data, &d); err == nil {
			_, _, err = s.Chat.Post(connID, d)
		}
	case "chatTyping":
		var d chatTypingData
		if err = decode(in.Data, &d); err == nil {
			s.Chat.Typing(connID, d.IsTyping)
		}
	default:
		err = errUnknownAction
	}

	if err != nil {
		s.reject(connID, errType, err, log)
		return
	}
	s.Metrics.Actions.WithLabelValues(in.Type).Inc()
}
