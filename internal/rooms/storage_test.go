package rooms

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	s := NewRegistry()
	if s == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if len(s.List()) != 0 {
		t.Error("new registry should have no rooms")
	}
}

func TestRegistry_Create(t *testing.T) {
	s := NewRegistry()
	room, err := s.Create(Player{ID: "host-1", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if room.Code == "" {
		t.Error("room code should not be empty")
	}
	if room.Host != "host-1" {
		t.Errorf("Host = %q, want %q", room.Host, "host-1")
	}
	if !room.Players[0].IsHost {
		t.Error("creator should be flagged as host")
	}
	if len(room.SeatOrder) != 1 || room.SeatOrder[0] != "host-1" {
		t.Errorf("SeatOrder = %v, want [host-1]", room.SeatOrder)
	}
	if room.NextStartIndex != 0 {
		t.Errorf("NextStartIndex = %d, want 0", room.NextStartIndex)
	}
	if room.GameStarted() {
		t.Error("new room should not have a game")
	}
}

func TestRegistry_CreateRetriesOnCollision(t *testing.T) {
	s := NewRegistry()
	codes := []string{"AAAA", "AAAA", "AAAA", "BBBB"}
	i := 0
	s.newCode = func() (string, error) {
		c := codes[i]
		i++
		return c, nil
	}

	first, err := s.Create(Player{ID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Create(Player{ID: "2"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Code != "AAAA" || second.Code != "BBBB" {
		t.Errorf("codes = %q, %q, want AAAA, BBBB", first.Code, second.Code)
	}
}

func TestRegistry_CreateGivesUp(t *testing.T) {
	s := NewRegistry()
	s.newCode = func() (string, error) { return "AAAA", nil }
	if _, err := s.Create(Player{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(Player{ID: "2"}); err == nil {
		t.Error("expected an error when every code collides")
	}

	s.newCode = func() (string, error) { return "", fmt.Errorf("entropy exhausted") }
	if _, err := s.Create(Player{ID: "3"}); err == nil {
		t.Error("expected code generation error to propagate")
	}
}

func TestRegistry_Get(t *testing.T) {
	s := NewRegistry()
	room, _ := s.Create(Player{ID: "host-1"})

	got, ok := s.Get(room.Code)
	if !ok || got != room {
		t.Fatal("Get() did not return the created room")
	}
	if _, ok := s.Get("ZZZZ"); ok {
		t.Error("Get() should report false for nonexistent room")
	}
}

func TestRegistry_RemoveRunsHooks(t *testing.T) {
	s := NewRegistry()
	room, _ := s.Create(Player{ID: "host-1"})

	var removed []string
	s.OnRemove(func(code string) { removed = append(removed, code) })

	s.Remove(room.Code)
	s.Remove(room.Code)

	if _, ok := s.Get(room.Code); ok {
		t.Error("room should be removed")
	}
	if !room.Closed() {
		t.Error("removed room should be marked closed")
	}
	if len(removed) != 1 || removed[0] != room.Code {
		t.Errorf("hooks saw %v, want exactly [%s]", removed, room.Code)
	}
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	s := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Create(Player{ID: fmt.Sprintf("p%d", i)}); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("Len() = %d, want 50", s.Len())
	}
}
