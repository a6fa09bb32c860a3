package chat

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/events"
)

type delivery struct {
	to     string // conn id, or group for broadcasts
	group  bool
	except []string
	msg    events.Message
}

type recorder struct {
	mu     sync.Mutex
	out    []delivery
	groups map[string][]string
}

func newRecorder() *recorder {
	return &recorder{groups: map[string][]string{}}
}

func (r *recorder) Join(connID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group] = append(r.groups[group], connID)
}

func (r *recorder) Leave(connID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group] = slices.DeleteFunc(r.groups[group], func(id string) bool { return id == connID })
}

func (r *recorder) Send(connID string, msg events.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, delivery{to: connID, msg: msg})
}

func (r *recorder) Broadcast(group string, msg events.Message, except ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, delivery{to: group, group: true, except: except, msg: msg})
}

func (r *recorder) types(to string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t []string
	for _, d := range r.out {
		if d.to == to {
			t = append(t, d.msg.Type)
		}
	}
	return t
}

func (r *recorder) last(typ string) (delivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.out) - 1; i >= 0; i-- {
		if r.out[i].msg.Type == typ {
			return r.out[i], true
		}
	}
	return delivery{}, false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = nil
}

func newChannel(rec *recorder) *Channel {
	c := New(rec, 50*time.Millisecond, zerolog.Nop())
	c.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return c
}

func TestJoin_DefaultsAndAck(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)

	code := c.Join("c1", "  ", "")
	assert.Equal(t, GlobalRoom, code)
	assert.Equal(t, []string{"c1"}, rec.groups[Group(GlobalRoom)])

	d, ok := rec.last(events.ChatJoined)
	require.True(t, ok)
	assert.Equal(t, "c1", d.to)
	assert.Equal(t, map[string]any{"roomCode": GlobalRoom, "membersCount": 1}, d.msg.Data)

	c.Join("c2", "GLOBAL", "Bea")
	sys, ok := rec.last(events.ChatSystem)
	require.True(t, ok)
	assert.Equal(t, []string{"c2"}, sys.except)
	assert.Equal(t, "Bea se unió", sys.msg.Data.(map[string]any)["text"])
	assert.Equal(t, 2, c.Members(GlobalRoom))
}

func TestJoin_SwitchesRooms(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)

	c.Join("c1", "ABCD", "Ana")
	c.Join("c1", "WXYZ", "Ana")

	assert.Equal(t, 0, c.Members("ABCD"))
	assert.Equal(t, 1, c.Members("WXYZ"))
	assert.Empty(t, rec.groups[Group("ABCD")])
}

func TestJoin_ClearDeliveredFirst(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)

	c.MarkForClear("ABCD")
	rec.reset()

	c.Join("c1", "ABCD", "Ana")
	assert.Equal(t, []string{events.ChatClear, events.ChatJoined}, rec.types("c1"))

	rec.reset()
	c.Join("c2", "ABCD", "Bea")
	assert.Equal(t, []string{events.ChatJoined}, rec.types("c2"), "marker is consumed once")
}

func TestLastMemberLeavingMarksClear(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)

	c.Join("c1", "ABCD", "Ana")
	c.Disconnect("c1")
	rec.reset()

	c.Join("c2", "ABCD", "Bea")
	assert.Equal(t, []string{events.ChatClear, events.ChatJoined}, rec.types("c2"))
}

func TestPost_FillsDefaults(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")

	msg, ok, err := c.Post("c1", Message{Text: "  hola  "})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ABCD", msg.RoomCode)
	assert.Equal(t, "Ana", msg.Name)
	assert.Equal(t, "hola", msg.Text)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, int64(1_700_000_000_000), msg.When)

	d, found := rec.last(events.ChatMessage)
	require.True(t, found)
	assert.Equal(t, Group("ABCD"), d.to)
}

func TestPost_Clips(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")

	long := make([]rune, maxTextLen+10)
	for i := range long {
		long[i] = 'ñ'
	}
	msg, ok, err := c.Post("c1", Message{Name: string(long[:60]), Text: string(long)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, []rune(msg.Name), maxNameLen)
	assert.Len(t, []rune(msg.Text), maxTextLen)
}

func TestPost_DedupByID(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")

	_, ok, err := c.Post("c1", Message{ID: "m-1", Text: "hola"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.Post("c1", Message{ID: "m-1", Text: "hola otra vez"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPost_DedupByFingerprint(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")

	_, ok, _ := c.Post("c1", Message{ID: "a", Text: "hola"})
	assert.True(t, ok)
	_, ok, _ = c.Post("c1", Message{ID: "b", Text: "hola"})
	assert.False(t, ok, "same sender and text inside one bucket is a duplicate")

	c.now = func() time.Time { return time.UnixMilli(1_700_000_010_000) }
	_, ok, _ = c.Post("c1", Message{ID: "c", Text: "hola"})
	assert.True(t, ok, "a later bucket is a new message")
}

func TestPost_Rejections(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)

	_, _, err := c.Post("c1", Message{Text: "hola"})
	assert.ErrorIs(t, err, ErrNotMember)

	c.Join("c1", "ABCD", "Ana")
	_, _, err = c.Post("c1", Message{RoomCode: "WXYZ", Text: "hola"})
	assert.ErrorIs(t, err, ErrNotMember)

	_, _, err = c.Post("c1", Message{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestTyping_AutoClears(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")
	c.Join("c2", "ABCD", "Bea")
	rec.reset()

	c.Typing("c1", true)
	assert.True(t, c.IsTyping("c1"))
	d, ok := rec.last(events.ChatTyping)
	require.True(t, ok)
	assert.Equal(t, []string{"c1"}, d.except)
	assert.Equal(t, map[string]any{"name": "Ana", "isTyping": true}, d.msg.Data)

	assert.Eventually(t, func() bool { return !c.IsTyping("c1") }, time.Second, 5*time.Millisecond)
	d, _ = rec.last(events.ChatTyping)
	assert.Equal(t, map[string]any{"name": "Ana", "isTyping": false}, d.msg.Data)
}

func TestTyping_ClearedByMessage(t *testing.T) {
	rec := newRecorder()
	c := New(rec, time.Hour, zerolog.Nop())
	c.Join("c1", "ABCD", "Ana")

	c.Typing("c1", true)
	_, ok, err := c.Post("c1", Message{Text: "listo"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, c.IsTyping("c1"))
}

func TestTyping_IgnoresNonMembers(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Typing("ghost", true)
	assert.False(t, c.IsTyping("ghost"))
	assert.Empty(t, rec.out)
}

func TestDisconnect_AnnouncesAndLeaves(t *testing.T) {
	rec := newRecorder()
	c := newChannel(rec)
	c.Join("c1", "ABCD", "Ana")
	c.Join("c2", "ABCD", "Bea")

	c.Disconnect("c2")
	sys, ok := rec.last(events.ChatSystem)
	require.True(t, ok)
	assert.Equal(t, "Bea se desconectó", sys.msg.Data.(map[string]any)["text"])
	assert.Equal(t, 1, c.Members("ABCD"))

	c.Disconnect("c2")
	assert.Equal(t, 1, c.Members("ABCD"))
}

func TestRecentForgetsOldest(t *testing.T) {
	r := newRecent(2)
	r.add("a")
	r.add("b")
	r.add("c")
	assert.False(t, r.has("a"))
	assert.True(t, r.has("b"))
	assert.True(t, r.has("c"))
}
