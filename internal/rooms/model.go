package rooms

import (
	"slices"
	"strings"
	"sync"
	"time"

	"impostor/internal/engine"
	"impostor/internal/roles"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Room is the shared state of one room. Callers hold the room lock for the
// whole validate, mutate and notify sequence of an action.
type Room struct {
	mu sync.Mutex

	Code           string
	Players        []Player
	Host           string
	SeatOrder      []string
	NextStartIndex int

	Game           *engine.Game
	Topic          roles.Selection
	Impostor       Player // impostor of the running game, kept after they leave
	LastImpostorID string
	Scores         map[string]int

	CreatedAt time.Time
	closed    bool
}

func newRoom(code string, host Player) *Room {
	host.IsHost = true
	return &Room{
		Code:      code,
		Players:   []Player{host},
		Host:      host.ID,
		SeatOrder: []string{host.ID},
		Scores:    map[string]int{},
		CreatedAt: time.Now(),
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Closed reports whether the room was removed from the registry. A caller
// that looked the room up before acquiring the lock must check it.
func (r *Room) Closed() bool { return r.closed }

func (r *Room) GameStarted() bool { return r.Game != nil }

func (r *Room) IsHost(id string) bool {
	return id != "" && r.Host == id
}

func (r *Room) Player(id string) (Player, bool) {
	i := slices.IndexFunc(r.Players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return Player{}, false
	}
	return r.Players[i], true
}

func (r *Room) HasPlayer(id string) bool {
	_, ok := r.Player(id)
	return ok
}

// NameOf returns the display name for id, or "" for unknown ids.
func (r *Room) NameOf(id string) string {
	p, _ := r.Player(id)
	return p.Name
}

// NameTaken compares display names case-insensitively.
func (r *Room) NameTaken(name string) bool {
	return slices.ContainsFunc(r.Players, func(p Player) bool {
		return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
	})
}

func (r *Room) PlayerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// AddPlayer appends p in join order and gives it a seat.
func (r *Room) AddPlayer(p Player) {
	p.IsHost = false
	r.Players = append(r.Players, p)
	r.EnsureSeatOrder()
}

// RemovePlayer drops id from the room. When the host leaves, the earliest
// remaining player becomes host. It reports whether id was present.
func (r *Room) RemovePlayer(id string) (Player, bool) {
	i := slices.IndexFunc(r.Players, func(p Player) bool { return p.ID == id })
	if i < 0 {
		return Player{}, false
	}
	gone := r.Players[i]
	r.Players = slices.Delete(r.Players, i, i+1)
	r.RemoveSeat(id)
	delete(r.Scores, id)

	if r.Host == id {
		r.Host = ""
		if len(r.Players) > 0 {
			r.Host = r.Players[0].ID
		}
	}
	for j := range r.Players {
		r.Players[j].IsHost = r.Players[j].ID == r.Host
	}
	return gone, true
}

func (r *Room) Empty() bool { return len(r.Players) == 0 }
