package coordinator

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"impostor/internal/events"
	"impostor/internal/metrics"
	"impostor/internal/roles"
	"impostor/internal/rooms"
)

const (
	maxNameLen = 40
	minPlayers = 3 // fewer than three ends every round before it starts
)

// Notifier delivers messages to connections and connection groups. A room's
// group is named by its code.
type Notifier interface {
	Join(connID, group string)
	Leave(connID, group string)
	Send(connID string, msg events.Message)
	Broadcast(group string, msg events.Message, except ...string)
}

type Options struct {
	MinPlayers    int
	MaxClueLength int
	RevealDelay   time.Duration
}

// Coordinator applies player actions to rooms. Every action on a room runs
// to completion under that room's lock, so actions on one room are
// serialized while different rooms proceed independently.
type Coordinator struct {
	registry *rooms.Registry
	assigner *roles.Assigner
	notifier Notifier
	metrics  *metrics.Metrics
	bus      *events.Bus
	log      zerolog.Logger
	opts     Options

	after func(time.Duration, func())

	mu         sync.Mutex
	membership map[string]string // conn id -> room code
}

func New(registry *rooms.Registry, assigner *roles.Assigner, notifier Notifier, m *metrics.Metrics, bus *events.Bus, log zerolog.Logger, opts Options) *Coordinator {
	opts.MinPlayers = max(opts.MinPlayers, minPlayers)
	if m == nil {
		m = metrics.New()
	}
	return &Coordinator{
		registry:   registry,
		assigner:   assigner,
		notifier:   notifier,
		metrics:    m,
		bus:        bus,
		log:        log,
		opts:       opts,
		after:      func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		membership: make(map[string]string),
	}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:maxNameLen]))
	}
	return name
}

// RoomOf returns the code of the room connID is in.
func (c *Coordinator) RoomOf(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.membership[connID]
	return code, ok
}

func (c *Coordinator) remember(connID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.membership[connID] = code
}

func (c *Coordinator) forget(connID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.membership[connID] == code {
		delete(c.membership, connID)
	}
}

// withRoom runs fn under the room lock after checking that the room exists
// and connID belongs to it. An empty code means the caller's current room.
func (c *Coordinator) withRoom(connID, code string, fn func(*rooms.Room) error) error {
	code = rooms.NormalizeCode(code)
	if code == "" {
		code, _ = c.RoomOf(connID)
	}
	room, ok := c.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}
	room.Lock()
	defer room.Unlock()
	if room.Closed() {
		return ErrRoomNotFound
	}
	if !room.HasPlayer(connID) {
		return ErrNotInRoom
	}
	return fn(room)
}

func (c *Coordinator) roomLog(room *rooms.Room) *zerolog.Logger {
	l := c.log.With().Str("room_code", room.Code).Logger()
	return &l
}

// CreateRoom opens a room hosted by connID.
func (c *Coordinator) CreateRoom(connID, name string) error {
	name = cleanName(name)
	if name == "" {
		return ErrNameRequired
	}
	c.leaveCurrent(connID)

	room, err := c.registry.Create(rooms.Player{ID: connID, Name: name})
	if err != nil {
		return err
	}
	room.Lock()
	defer room.Unlock()

	c.remember(connID, room.Code)
	c.notifier.Join(connID, room.Code)
	c.metrics.Rooms.Set(float64(c.registry.Len()))
	c.notifier.Send(connID, events.New(events.RoomCreated, roomPayload{
		RoomCode: room.Code,
		IsHost:   true,
		Players:  room.Players,
	}))
	c.roomLog(room).Info().Str("conn_id", connID).Msg("room created")
	return nil
}

// JoinRoom adds connID to an existing room that has no game running.
func (c *Coordinator) JoinRoom(connID, code, name string) error {
	name = cleanName(name)
	if name == "" {
		return ErrNameRequired
	}
	code = rooms.NormalizeCode(code)
	if current, ok := c.RoomOf(connID); ok {
		if current == code {
			return ErrAlreadyInRoom
		}
		c.leaveCurrent(connID)
	}

	room, ok := c.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}
	room.Lock()
	defer room.Unlock()
	switch {
	case room.Closed():
		return ErrRoomNotFound
	case room.GameStarted():
		return ErrGameInProgress
	case room.NameTaken(name):
		return ErrNameTaken
	}

	player := rooms.Player{ID: connID, Name: name}
	room.AddPlayer(player)
	c.remember(connID, room.Code)
	c.notifier.Join(connID, room.Code)

	c.notifier.Send(connID, events.New(events.RoomJoined, roomPayload{
		RoomCode: room.Code,
		IsHost:   false,
		Players:  room.Players,
	}))
	c.notifier.Broadcast(room.Code, events.New(events.PlayerJoined, playerJoinedPayload{
		Player:  player,
		Players: room.Players,
	}))
	c.roomLog(room).Info().Str("conn_id", connID).Int("players", len(room.Players)).Msg("player joined")
	return nil
}

// LeaveRoom removes connID from the room.
func (c *Coordinator) LeaveRoom(connID, code string) error {
	return c.withRoom(connID, code, func(room *rooms.Room) error {
		c.removePlayer(room, connID)
		return nil
	})
}

// Disconnect is an implicit leave of whatever room connID is in.
func (c *Coordinator) Disconnect(connID string) {
	c.leaveCurrent(connID)
}

func (c *Coordinator) leaveCurrent(connID string) {
	code, ok := c.RoomOf(connID)
	if !ok {
		return
	}
	err := c.withRoom(connID, code, func(room *rooms.Room) error {
		c.removePlayer(room, connID)
		return nil
	})
	if err != nil {
		c.forget(connID, code)
	}
}

// removePlayer runs under the room lock. It keeps host, seats and any
// running game consistent and destroys the room once it is empty.
func (c *Coordinator) removePlayer(room *rooms.Room, connID string) {
	gone, ok := room.RemovePlayer(connID)
	if !ok {
		return
	}
	c.notifier.Leave(connID, room.Code)
	c.forget(connID, room.Code)
	log := c.roomLog(room)

	if room.Empty() {
		room.Game = nil
		c.registry.Remove(room.Code)
		c.metrics.Rooms.Set(float64(c.registry.Len()))
		log.Info().Msg("room destroyed")
		return
	}

	c.notifier.Broadcast(room.Code, events.New(events.PlayerLeft, playerLeftPayload{
		Player:  gone,
		Players: room.Players,
		HostID:  room.Host,
	}))
	log.Info().Str("conn_id", connID).Str("host", room.Host).Msg("player left")

	if room.Game != nil {
		c.apply(room, room.Game.RemovePlayer(connID))
	}
}

// Info is a read-only room summary.
type Info struct {
	Code    string
	Players int
	Started bool
	Mode    string
}

func (c *Coordinator) RoomInfo(code string) (Info, bool) {
	room, ok := c.registry.Get(rooms.NormalizeCode(code))
	if !ok {
		return Info{}, false
	}
	room.Lock()
	defer room.Unlock()
	if room.Closed() {
		return Info{}, false
	}
	info := Info{Code: room.Code, Players: len(room.Players), Started: room.GameStarted()}
	if room.Game != nil {
		info.Mode = string(room.Game.Mode)
	}
	return info, true
}
