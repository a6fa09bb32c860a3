package rooms

import (
	"fmt"
	"sync"
)

const maxCodeAttempts = 10

// Registry owns every live room, keyed by code.
type Registry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	newCode  func() (string, error)
	onRemove []func(code string)
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		newCode: GenerateCode,
	}
}

// OnRemove registers fn to run after a room is destroyed. Hooks run
// synchronously and must not call back into the registry's room lock.
func (s *Registry) OnRemove(fn func(code string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

// Create makes a room hosted by host under a fresh code.
func (s *Registry) Create(host Player) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}
		room := newRoom(code, host)
		s.rooms[code] = room
		return room, nil
	}
	return nil, fmt.Errorf("failed to generate unique room code after %d attempts", maxCodeAttempts)
}

func (s *Registry) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Remove destroys the room under code. The caller must hold the room's
// lock so no other action observes a half-removed room.
func (s *Registry) Remove(code string) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	if ok {
		delete(s.rooms, code)
		room.closed = true
	}
	hooks := append([]func(string){}, s.onRemove...)
	s.mu.Unlock()

	if !ok {
		return
	}
	for _, fn := range hooks {
		fn(code)
	}
}

func (s *Registry) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

func (s *Registry) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
