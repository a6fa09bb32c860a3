package wshub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"impostor/internal/events"
)

func newClient(id string, buffer int) *Client {
	return &Client{ID: id, Send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) events.Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var got struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return events.Message{Type: got.Type, Data: got.Data}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("%s did not receive a message", c.ID)
	}
	return events.Message{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("%s got unexpected message %s", c.ID, data)
	default:
	}
}

func TestBroadcastToGroup(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1, c2, c3 := newClient("c1", 4), newClient("c2", 4), newClient("c3", 4)
	for _, c := range []*Client{c1, c2, c3} {
		h.Register(c)
	}
	h.Join("c1", "ABCD")
	h.Join("c2", "ABCD")

	h.Broadcast("ABCD", events.New(events.VoteProgress, map[string]int{"votesCast": 1, "total": 3}))

	for _, c := range []*Client{c1, c2} {
		got := receive(t, c)
		if got.Type != events.VoteProgress {
			t.Errorf("%s got type %q, want %q", c.ID, got.Type, events.VoteProgress)
		}
	}
	expectNothing(t, c3)
}

func TestBroadcastExcept(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1, c2 := newClient("c1", 4), newClient("c2", 4)
	h.Register(c1)
	h.Register(c2)
	h.Join("c1", "CHAT_ABCD")
	h.Join("c2", "CHAT_ABCD")

	h.Broadcast("CHAT_ABCD", events.New(events.ChatTyping, nil), "c1")

	receive(t, c2)
	expectNothing(t, c1)
}

func TestSendUnicast(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1, c2 := newClient("c1", 4), newClient("c2", 4)
	h.Register(c1)
	h.Register(c2)

	h.Send("c2", events.New(events.Error, map[string]string{"message": "not your turn"}))
	h.Send("ghost", events.New(events.Error, nil))

	got := receive(t, c2)
	if got.Data.(map[string]any)["message"] != "not your turn" {
		t.Errorf("unexpected payload %+v", got.Data)
	}
	expectNothing(t, c1)
}

func TestUnregisterLeavesGroupsAndCloses(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c1 := newClient("c1", 4)
	h.Register(c1)
	h.Join("c1", "ABCD")
	h.Join("c1", "CHAT_ABCD")

	h.Unregister("c1")
	h.Unregister("c1")

	if h.GroupSize("ABCD") != 0 || h.GroupSize("CHAT_ABCD") != 0 {
		t.Error("unregistered client should leave every group")
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
	if _, ok := <-c1.Send; ok {
		t.Fatal("c1.Send should be closed")
	}
}

func TestLeave(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.Register(newClient("c1", 4))
	h.Join("c1", "ABCD")
	h.Leave("c1", "ABCD")
	h.Leave("c1", "WXYZ")

	if h.GroupSize("ABCD") != 0 {
		t.Errorf("GroupSize = %d, want 0", h.GroupSize("ABCD"))
	}
}

func TestFullBufferEvictsClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	drops := 0
	h.OnDrop = func() { drops++ }

	c1 := newClient("c1", 1)
	h.Register(c1)
	h.Join("c1", "ABCD")

	done := make(chan struct{})
	go func() {
		h.Broadcast("ABCD", events.New(events.AllReady, nil))
		h.Broadcast("ABCD", events.New(events.AllReady, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full buffer")
	}
	if drops != 1 {
		t.Errorf("drops = %d, want 1", drops)
	}
	if !c1.Evicted() {
		t.Error("c1 should be evicted after its buffer filled")
	}

	// An evicted client receives nothing further, even once drained.
	receive(t, c1)
	h.Send("c1", events.New(events.GameStarted, nil))
	expectNothing(t, c1)
	if drops != 1 {
		t.Errorf("drops after eviction = %d, want 1", drops)
	}
}

func TestSlowClientDoesNotStallOthers(t *testing.T) {
	h := NewHub(zerolog.Nop())
	slow, fast := newClient("slow", 1), newClient("fast", 4)
	h.Register(slow)
	h.Register(fast)
	h.Join("slow", "ABCD")
	h.Join("fast", "ABCD")

	h.Broadcast("ABCD", events.New(events.RoundStarted, nil))
	h.Broadcast("ABCD", events.New(events.VotingStarted, nil))

	if fast.Evicted() {
		t.Error("fast client should not be evicted")
	}
	if got := receive(t, fast); got.Type != events.RoundStarted {
		t.Errorf("fast got type %q, want %q", got.Type, events.RoundStarted)
	}
	if got := receive(t, fast); got.Type != events.VotingStarted {
		t.Errorf("fast got type %q, want %q", got.Type, events.VotingStarted)
	}
	if !slow.Evicted() {
		t.Error("slow client should be evicted")
	}
}
