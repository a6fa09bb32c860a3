package chat

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"impostor/internal/events"
)

const (
	GlobalRoom  = "GLOBAL"
	DefaultName = "Anónimo"

	maxNameLen = 40
	maxTextLen = 2000

	// Messages with the same sender, text and room inside one bucket are
	// treated as the same message.
	fingerprintBucket = 2 * time.Second
	seenPerRoom       = 256
)

var (
	ErrNotMember = errors.New("join the chat room before posting")
	ErrEmptyText = errors.New("message text is empty")
)

// Notifier delivers messages to connections and connection groups.
type Notifier interface {
	Join(connID, group string)
	Leave(connID, group string)
	Send(connID string, msg events.Message)
	Broadcast(group string, msg events.Message, except ...string)
}

// Message is a chat line as delivered to clients.
type Message struct {
	RoomCode string `json:"roomCode"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	When     int64  `json:"when"` // unix millis
}

type member struct {
	room string
	name string
}

// Channel is the chat layer. Chat rooms are keyed by room code but live
// independently of game rooms.
type Channel struct {
	mu            sync.Mutex
	notifier      Notifier
	typingTimeout time.Duration
	log           zerolog.Logger
	now           func() time.Time

	members    map[string]member      // conn id -> membership
	counts     map[string]int         // room code -> members
	needsClear map[string]bool        // room codes whose history is stale
	seen       map[string]*recent     // room code -> recent message keys
	typing     map[string]*time.Timer // conn id -> auto-clear timer
}

func New(n Notifier, typingTimeout time.Duration, log zerolog.Logger) *Channel {
	return &Channel{
		notifier:      n,
		typingTimeout: typingTimeout,
		log:           log,
		now:           time.Now,
		members:       map[string]member{},
		counts:        map[string]int{},
		needsClear:    map[string]bool{},
		seen:          map[string]*recent{},
		typing:        map[string]*time.Timer{},
	}
}

// Group is the broadcast group of a chat room.
func Group(code string) string {
	return "CHAT_" + code
}

func roomCode(code string) string {
	if code = strings.TrimSpace(code); code != "" {
		return code
	}
	return GlobalRoom
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	return s
}

// Join moves connID into the chat room for code, leaving any previous one.
// A pending clear for the room is delivered before the join ack.
func (c *Channel) Join(connID, code, name string) string {
	code = roomCode(code)
	name = clip(name, maxNameLen)
	if name == "" {
		name = DefaultName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.members[connID]; ok {
		c.leaveLocked(connID, prev)
	}
	c.members[connID] = member{room: code, name: name}
	c.counts[code]++
	c.notifier.Join(connID, Group(code))

	if c.needsClear[code] {
		delete(c.needsClear, code)
		delete(c.seen, code)
		c.notifier.Send(connID, events.New(events.ChatClear, map[string]string{"roomCode": code}))
	}
	c.notifier.Send(connID, events.New(events.ChatJoined, map[string]any{
		"roomCode":     code,
		"membersCount": c.counts[code],
	}))
	c.system(code, name+" se unió", connID)
	c.log.Debug().Str("room_code", code).Str("conn_id", connID).Msg("chat join")
	return code
}

// Post validates and broadcasts a message. Duplicates, by id or by content
// fingerprint, are dropped and reported with ok=false.
func (c *Channel) Post(connID string, in Message) (Message, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, joined := c.members[connID]
	code := m.room
	if in.RoomCode != "" {
		code = roomCode(in.RoomCode)
	}
	if !joined || code != m.room {
		return Message{}, false, ErrNotMember
	}

	out := Message{
		RoomCode: code,
		ID:       strings.TrimSpace(in.ID),
		Name:     clip(in.Name, maxNameLen),
		Text:     clip(in.Text, maxTextLen),
		When:     in.When,
	}
	if out.Text == "" {
		return Message{}, false, ErrEmptyText
	}
	if out.Name == "" {
		out.Name = m.name
	}
	now := c.now()
	if out.When <= 0 {
		out.When = now.UnixMilli()
	}

	seen := c.seen[code]
	if seen == nil {
		seen = newRecent(seenPerRoom)
		c.seen[code] = seen
	}
	fp := fingerprint(connID, out.Text, code, now)
	if (out.ID != "" && seen.has("id:"+out.ID)) || seen.has(fp) {
		c.log.Debug().Str("room_code", code).Str("conn_id", connID).Msg("duplicate chat message dropped")
		return Message{}, false, nil
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	seen.add("id:" + out.ID)
	seen.add(fp)

	c.stopTypingLocked(connID, true)
	c.notifier.Broadcast(Group(code), events.New(events.ChatMessage, out))
	return out, true, nil
}

func fingerprint(sender, text, code string, at time.Time) string {
	bucket := at.UnixMilli() / fingerprintBucket.Milliseconds()
	return strings.Join([]string{"fp", sender, code, text, strconv.FormatInt(bucket, 10)}, "\x00")
}

// Typing relays a typing hint to the rest of the room. A positive hint
// clears itself after the typing timeout unless refreshed.
func (c *Channel) Typing(connID string, isTyping bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.members[connID]
	if !ok {
		return
	}
	if !isTyping {
		c.stopTypingLocked(connID, true)
		return
	}

	if t, ok := c.typing[connID]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(c.typingTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.typing[connID] != timer {
			return
		}
		c.stopTypingLocked(connID, true)
	})
	c.typing[connID] = timer
	c.notifier.Broadcast(Group(m.room), typingMessage(m.name, true), connID)
}

// IsTyping reports whether connID holds an unexpired typing hint.
func (c *Channel) IsTyping(connID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.typing[connID]
	return ok
}

func typingMessage(name string, isTyping bool) events.Message {
	return events.New(events.ChatTyping, map[string]any{"name": name, "isTyping": isTyping})
}

func (c *Channel) stopTypingLocked(connID string, announce bool) {
	t, ok := c.typing[connID]
	if !ok {
		return
	}
	t.Stop()
	delete(c.typing, connID)
	if m, ok := c.members[connID]; ok && announce {
		c.notifier.Broadcast(Group(m.room), typingMessage(m.name, false), connID)
	}
}

// Disconnect removes connID from its chat room and tells the others.
func (c *Channel) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.members[connID]
	if !ok {
		return
	}
	c.stopTypingLocked(connID, true)
	c.leaveLocked(connID, m)
	c.system(m.room, m.name+" se desconectó", "")
}

func (c *Channel) leaveLocked(connID string, m member) {
	c.stopTypingLocked(connID, false)
	delete(c.members, connID)
	c.notifier.Leave(connID, Group(m.room))
	c.counts[m.room]--
	if c.counts[m.room] <= 0 {
		delete(c.counts, m.room)
		c.needsClear[m.room] = true
		delete(c.seen, m.room)
	}
}

// MarkForClear flags the chat history of code as stale, typically after
// the game room with that code was destroyed. Current members are told to
// clear now and the next joiner is told on join.
func (c *Channel) MarkForClear(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needsClear[code] = true
	delete(c.seen, code)
	c.notifier.Broadcast(Group(code), events.New(events.ChatClear, map[string]string{"roomCode": code}))
}

func (c *Channel) Members(code string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[roomCode(code)]
}

func (c *Channel) system(code, text, except string) {
	msg := events.New(events.ChatSystem, map[string]any{"text": text, "when": c.now().UnixMilli()})
	if except != "" {
		c.notifier.Broadcast(Group(code), msg, except)
		return
	}
	c.notifier.Broadcast(Group(code), msg)
}
