package coordinator

import (
	"strings"
	"time"

	"impostor/internal/engine"
	"impostor/internal/events"
	"impostor/internal/metrics"
	"impostor/internal/roles"
	"impostor/internal/rooms"
)

const (
	impostorWinPoints = 3
	groupWinPoints    = 1
)

type StartRequest struct {
	RoomCode string
	Topic    string
	Theme    *roles.Theme
	Mode     string
}

// StartGame assigns roles and starts a game. Only the host may call it.
func (c *Coordinator) StartGame(connID string, req StartRequest) error {
	return c.withRoom(connID, req.RoomCode, func(room *rooms.Room) error {
		switch {
		case !room.IsHost(connID):
			return ErrNotHost
		case room.GameStarted():
			return ErrGameInProgress
		case len(room.Players) < c.opts.MinPlayers:
			return ErrNotEnoughPlayers
		}

		sel := roles.Normalize(req.Topic, req.Theme)
		a, err := c.assigner.Assign(room.PlayerIDs(), sel, room.LastImpostorID)
		if err != nil {
			return err
		}

		mode := engine.ModeRounds
		if strings.EqualFold(req.Mode, string(engine.ModeReveal)) {
			mode = engine.ModeReveal
		}
		if mode == engine.ModeReveal {
			room.Game = engine.NewReveal(room.PlayerIDs(), a.Word, a.ImpostorID)
		} else {
			room.Game = engine.New(room.OrderForNewGame(), a.Word, a.ImpostorID, c.opts.MaxClueLength)
		}
		room.Topic = a.Selection
		room.Impostor, _ = room.Player(a.ImpostorID)

		for _, p := range room.Players {
			payload := gameStartedPayload{
				Players: room.Players,
				Role:    "player",
				Theme:   a.Selection,
				Mode:    mode,
			}
			if p.ID == a.ImpostorID {
				payload.Role = "impostor"
				payload.ImpostorID = a.ImpostorID
			} else {
				word := a.Word
				payload.Word = &word
			}
			c.notifier.Send(p.ID, events.New(events.GameStarted, payload))
		}
		if mode == engine.ModeReveal {
			c.notifier.Broadcast(room.Code, translate(room, room.Game.Turn()))
		}

		c.metrics.GamesStarted.WithLabelValues(string(mode)).Inc()
		c.roomLog(room).Info().
			Str("mode", string(mode)).
			Str("category", a.Selection.Category).
			Str("subtopic", a.Selection.Subtopic).
			Int("players", len(room.Players)).
			Msg("game started")
		return nil
	})
}

// gameAction runs fn against the room's game and applies the outcome.
func (c *Coordinator) gameAction(connID, code string, fn func(*engine.Game) (engine.Outcome, error)) error {
	return c.withRoom(connID, code, func(room *rooms.Room) error {
		if room.Game == nil {
			return ErrNoGame
		}
		out, err := fn(room.Game)
		if err != nil {
			return err
		}
		c.apply(room, out)
		return nil
	})
}

func (c *Coordinator) PlayerReady(connID, code string) error {
	return c.gameAction(connID, code, func(g *engine.Game) (engine.Outcome, error) {
		return g.Ready(connID)
	})
}

func (c *Coordinator) SubmitWord(connID, code, text string) error {
	return c.gameAction(connID, code, func(g *engine.Game) (engine.Outcome, error) {
		return g.Submit(connID, text)
	})
}

func (c *Coordinator) CastVote(connID, code, targetID string) error {
	return c.gameAction(connID, code, func(g *engine.Game) (engine.Outcome, error) {
		return g.Vote(connID, targetID)
	})
}

func (c *Coordinator) NextTurn(connID, code string) error {
	return c.gameAction(connID, code, func(g *engine.Game) (engine.Outcome, error) {
		return g.NextTurn(connID)
	})
}

// GameEnded lets the host declare the outcome directly.
func (c *Coordinator) GameEnded(connID, code string, impostorWon bool) error {
	return c.withRoom(connID, code, func(room *rooms.Room) error {
		if !room.IsHost(connID) {
			return ErrNotHost
		}
		if room.Game == nil {
			return ErrNoGame
		}
		out, err := room.Game.ForceEnd(impostorWon)
		if err != nil {
			return err
		}
		c.apply(room, out)
		return nil
	})
}

// apply broadcasts the outcome of a transition and handles game end and
// the post-elimination pause. It runs under the room lock.
func (c *Coordinator) apply(room *rooms.Room, out engine.Outcome) {
	for _, ev := range out.Events {
		switch e := ev.(type) {
		case engine.VotingResult:
			c.metrics.Eliminations.Inc()
		case engine.VotingStarted:
			if e.VoteRound > 1 {
				c.metrics.Revotes.Inc()
			}
		}
		c.notifier.Broadcast(room.Code, translate(room, ev))
	}
	if out.Result != nil {
		c.finish(room, *out.Result)
		return
	}
	if out.Pause {
		c.scheduleResume(room.Code, room.Game)
	}
}

// scheduleResume starts the next round after the reveal delay, provided
// the same game is still running then.
func (c *Coordinator) scheduleResume(code string, game *engine.Game) {
	c.after(c.opts.RevealDelay, func() {
		room, ok := c.registry.Get(code)
		if !ok {
			return
		}
		room.Lock()
		defer room.Unlock()
		if room.Closed() || room.Game != game {
			return
		}
		out, err := game.Resume()
		if err != nil {
			return
		}
		c.apply(room, out)
	})
}

// finish scores the game, announces the result, rotates the start seat
// and clears the game.
func (c *Coordinator) finish(room *rooms.Room, res engine.Result) {
	points := map[string]int{}
	if res.ImpostorWon {
		if room.HasPlayer(res.ImpostorID) {
			points[res.ImpostorID] = impostorWinPoints
		}
	} else {
		for _, p := range room.Players {
			if p.ID != res.ImpostorID {
				points[p.ID] = groupWinPoints
			}
		}
	}
	for id, n := range points {
		room.Scores[id] += n
	}

	scores := make([]scoreEntry, 0, len(room.Players))
	for _, p := range room.Players {
		scores = append(scores, scoreEntry{ID: p.ID, Name: p.Name, Score: room.Scores[p.ID]})
	}
	impostor := room.Impostor
	if impostor.ID == "" {
		impostor = rooms.Player{ID: res.ImpostorID}
	}
	c.notifier.Broadcast(room.Code, events.New(events.GameResult, gameResultPayload{
		ImpostorWon: res.ImpostorWon,
		Impostor:    impostor,
		Word:        res.Word,
		Reason:      res.Reason,
		Scores:      scores,
	}))

	room.AdvanceOffset()
	room.LastImpostorID = res.ImpostorID
	room.Game = nil
	room.Impostor = rooms.Player{}

	c.metrics.GamesFinished.WithLabelValues(res.Reason, metrics.Winner(res.ImpostorWon)).Inc()
	c.publish(room, impostor, res, points)
	c.roomLog(room).Info().
		Bool("impostor_won", res.ImpostorWon).
		Str("reason", res.Reason).
		Int("rounds", res.Rounds).
		Msg("game finished")
}

func (c *Coordinator) publish(room *rooms.Room, impostor rooms.Player, res engine.Result, points map[string]int) {
	if c.bus == nil {
		return
	}
	byName := make(map[string]int, len(points))
	for id, n := range points {
		byName[room.NameOf(id)] = n
	}
	rec := events.GameRecord{
		RoomCode:     room.Code,
		Category:     room.Topic.Category,
		Subtopic:     room.Topic.Subtopic,
		Word:         res.Word,
		ImpostorID:   res.ImpostorID,
		ImpostorName: impostor.Name,
		ImpostorWon:  res.ImpostorWon,
		Reason:       res.Reason,
		Rounds:       res.Rounds,
		Forced:       res.Forced,
		Points:       byName,
		EndedAt:      time.Now(),
	}
	if !c.bus.Publish(rec) {
		c.roomLog(room).Warn().Msg("history bus full, game record dropped")
	}
}
