package coordinator

import "impostor/internal/engine"

var (
	ErrRoomNotFound     = engine.NewError(engine.KindNotFound, "room not found")
	ErrNotInRoom        = engine.NewError(engine.KindAuthorization, "you are not in this room")
	ErrNotHost          = engine.NewError(engine.KindAuthorization, "only the host can do that")
	ErrNameRequired     = engine.NewError(engine.KindValidation, "a player name is required")
	ErrNameTaken        = engine.NewError(engine.KindValidation, "a player with that name is already in the room")
	ErrAlreadyInRoom    = engine.NewError(engine.KindValidation, "you are already in this room")
	ErrNotEnoughPlayers = engine.NewError(engine.KindValidation, "not enough players to start")
	ErrGameInProgress   = engine.NewError(engine.KindPhase, "the game has already started")
	ErrNoGame           = engine.NewError(engine.KindPhase, "the game has not started")
)
