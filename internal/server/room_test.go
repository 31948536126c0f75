package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okeefe/banter/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeConn records every frame the room delivers to it.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	full   bool // simulate a send buffer that can't take frames
}

func (c *fakeConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return false
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// received decodes everything the conn has been sent so far.
func (c *fakeConn) received(t *testing.T) []protocol.ServerMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.ServerMessage, len(c.frames))
	for i, f := range c.frames {
		require.NoError(t, json.Unmarshal(f, &out[i]))
	}
	return out
}

func decodeEvent(t *testing.T, msg protocol.ServerMessage) protocol.ChatEvent {
	t.Helper()
	require.Equal(t, protocol.MsgMessage, msg.Type)
	var evt protocol.ChatEvent
	require.NoError(t, json.Unmarshal(msg.Data, &evt))
	return evt
}

func decodeRoomState(t *testing.T, msg protocol.ServerMessage) protocol.RoomState {
	t.Helper()
	require.Equal(t, protocol.MsgRoomState, msg.Type)
	var state protocol.RoomState
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	return state
}

func decodeUserCount(t *testing.T, msg protocol.ServerMessage) int {
	t.Helper()
	require.Equal(t, protocol.MsgUserCount, msg.Type)
	var uc protocol.UserCount
	require.NoError(t, json.Unmarshal(msg.Data, &uc))
	return uc.Count
}

func sendMessage(r *Room, userID, content string) {
	raw, _ := json.Marshal(protocol.ClientMessage{Type: protocol.MsgSendMessage, Content: content})
	r.Inbound(userID, raw)
}

func TestBindIsIdempotent(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")
	r.Bind("R1", "Some Other Name")

	info := r.Info()
	assert.Equal(t, "R1", info.ID)
	assert.Equal(t, "Room R1", info.Name, "first bind wins and defaults the display name")
}

func TestBindExplicitName(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "The Lounge")
	assert.Equal(t, "The Lounge", r.Info().Name)
}

func TestJoinSendsRoomStateToJoinerOnly(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)

	msgs := a.received(t)
	require.Len(t, msgs, 1, "joiner gets the snapshot and nothing else")

	state := decodeRoomState(t, msgs[0])
	assert.Equal(t, "R1", state.ID)
	assert.Equal(t, "Room R1", state.Name)
	assert.Equal(t, 1, state.UserCount, "count reflects the post-join membership")
	assert.Empty(t, state.Messages, "snapshot never contains the joiner's own join event")

	hist := r.History(10)
	require.Len(t, hist, 1)
	assert.Equal(t, protocol.EventJoin, hist[0].Kind)
	assert.Equal(t, "Alice joined the room", hist[0].Content)
}

func TestJoinNotifiesOthers(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	b := &fakeConn{}
	r.Join("u1", "Alice", a)
	r.Join("u2", "Bob", b)

	// Alice sees Bob's join event then the count update.
	msgs := a.received(t)
	require.Len(t, msgs, 3)
	evt := decodeEvent(t, msgs[1])
	assert.Equal(t, protocol.EventJoin, evt.Kind)
	assert.Equal(t, "Bob", evt.Nickname)
	assert.Equal(t, "u2", evt.UserID)
	assert.Equal(t, 2, decodeUserCount(t, msgs[2]))

	// Bob's snapshot includes Alice's earlier join but not his own.
	state := decodeRoomState(t, b.received(t)[0])
	assert.Equal(t, 2, state.UserCount)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "Alice joined the room", state.Messages[0].Content)
}

func TestSendMessageEchoesToEveryoneIncludingSender(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	b := &fakeConn{}
	r.Join("u1", "Alice", a)
	r.Join("u2", "Bob", b)

	sendMessage(r, "u1", "hi")

	aMsgs := a.received(t)
	evt := decodeEvent(t, aMsgs[len(aMsgs)-1])
	assert.Equal(t, protocol.EventMessage, evt.Kind)
	assert.Equal(t, "hi", evt.Content)
	assert.Equal(t, "Alice", evt.Nickname)

	bMsgs := b.received(t)
	assert.Equal(t, "hi", decodeEvent(t, bMsgs[len(bMsgs)-1]).Content)
}

func TestWhitespaceMessageIgnored(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)
	before := len(a.received(t))

	sendMessage(r, "u1", "")
	sendMessage(r, "u1", "   \t\n")

	assert.Len(t, a.received(t), before, "no broadcast for empty content")
	assert.Len(t, r.History(100), 1, "no history event either")
}

func TestMessageFromUnregisteredIDIgnored(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)
	before := len(a.received(t))

	sendMessage(r, "ghost", "boo")

	assert.Len(t, a.received(t), before)
	assert.Len(t, r.History(100), 1)
}

func TestPingAnswersSenderOnly(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	b := &fakeConn{}
	r.Join("u1", "Alice", a)
	r.Join("u2", "Bob", b)
	aBefore := len(a.received(t))
	bBefore := len(b.received(t))

	raw, _ := json.Marshal(protocol.ClientMessage{Type: protocol.MsgPing})
	r.Inbound("u1", raw)

	aMsgs := a.received(t)
	require.Len(t, aMsgs, aBefore+1)
	assert.Equal(t, protocol.MsgPong, aMsgs[len(aMsgs)-1].Type)
	assert.Len(t, b.received(t), bBefore, "pong is not broadcast")
	assert.Len(t, r.History(100), 2, "ping has no history effect")
}

func TestUnknownInboundTypeIgnored(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)
	before := len(a.received(t))

	r.Inbound("u1", []byte(`{"type":"teleport","content":"x"}`))

	assert.Len(t, a.received(t), before)
	_, ok := r.sessions.Get("u1")
	assert.True(t, ok, "unknown types must not disconnect the session")
}

func TestMalformedInboundIgnored(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)

	r.Inbound("u1", []byte(`{not json`))

	_, ok := r.sessions.Get("u1")
	assert.True(t, ok)
	assert.Len(t, r.History(100), 1)
}

func TestLeaveNotifiesRemaining(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	b := &fakeConn{}
	r.Join("u1", "Alice", a)
	r.Join("u2", "Bob", b)
	bBefore := len(b.received(t))

	r.Leave("u2", b)

	aMsgs := a.received(t)
	require.GreaterOrEqual(t, len(aMsgs), 2)
	evt := decodeEvent(t, aMsgs[len(aMsgs)-2])
	assert.Equal(t, protocol.EventLeave, evt.Kind)
	assert.Equal(t, "Bob left the room", evt.Content)
	assert.Equal(t, 1, decodeUserCount(t, aMsgs[len(aMsgs)-1]))

	assert.Len(t, b.received(t), bBefore, "the leaving session receives nothing")
	assert.Equal(t, 1, r.Info().UserCount)
}

func TestLeaveIsIdempotent(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)

	r.Leave("u1", a)
	histAfter := len(r.History(100))
	r.Leave("u1", a)
	r.Leave("never-joined", nil)

	assert.Len(t, r.History(100), histAfter, "repeated leaves append nothing")
	assert.Equal(t, 0, r.Info().UserCount)
}

func TestDuplicateJoinReplacesAndClosesOld(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	other := &fakeConn{}
	first := &fakeConn{}
	second := &fakeConn{}
	r.Join("watcher", "Watcher", other)
	r.Join("u1", "Alice", first)

	r.Join("u1", "Alice", second)

	assert.True(t, first.isClosed(), "superseded connection must be closed")
	assert.Equal(t, 2, r.Info().UserCount, "the replaced id counts once")

	firstBefore := len(first.received(t))
	sendMessage(r, "watcher", "hello?")

	assert.Len(t, first.received(t), firstBefore, "no further deliveries to the old handle")
	msgs := second.received(t)
	assert.Equal(t, "hello?", decodeEvent(t, msgs[len(msgs)-1]).Content)
}

func TestSupersededLeaveCannotEvictReplacement(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	first := &fakeConn{}
	second := &fakeConn{}
	r.Join("u1", "Alice", first)
	r.Join("u1", "Alice", second)

	// The old connection's read pump tears down late; its Leave must not
	// touch the replacement session.
	r.Leave("u1", first)

	assert.Equal(t, 1, r.Info().UserCount)
	_, ok := r.sessions.Get("u1")
	assert.True(t, ok)
}

func TestSnapshotCappedAtLimit(t *testing.T) {
	r := NewRoom(1000, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	r.Join("u1", "Alice", a)
	for i := 1; i <= snapshotLimit+10; i++ {
		sendMessage(r, "u1", fmt.Sprintf("msg-%d", i))
	}

	b := &fakeConn{}
	r.Join("u2", "Bob", b)

	state := decodeRoomState(t, b.received(t)[0])
	require.Len(t, state.Messages, snapshotLimit)
	assert.Equal(t, fmt.Sprintf("msg-%d", snapshotLimit+10), state.Messages[len(state.Messages)-1].Content,
		"snapshot holds the most recent events")
}

func TestJoinSnapshotDeliveryFailureDropsSession(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	dead := &fakeConn{full: true}
	r.Join("u1", "Alice", dead)

	assert.True(t, dead.isClosed())
	assert.Equal(t, 0, r.Info().UserCount)
	assert.Empty(t, r.History(100), "a join that never completed is never announced")
}

func TestCountTracksJoinsAndLeaves(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	conns := map[string]*fakeConn{}
	for _, id := range []string{"u1", "u2", "u3"} {
		c := &fakeConn{}
		conns[id] = c
		r.Join(id, "nick-"+id, c)
	}
	assert.Equal(t, 3, r.Info().UserCount)

	// Duplicate join replaces, keeps count.
	dup := &fakeConn{}
	r.Join("u2", "nick-u2", dup)
	assert.Equal(t, 3, r.Info().UserCount)

	r.Leave("u1", conns["u1"])
	r.Leave("u3", conns["u3"])
	assert.Equal(t, 1, r.Info().UserCount)
}

func TestBroadcastIsolatesFailingRecipient(t *testing.T) {
	r := NewRoom(100, testLogger())
	r.Bind("R1", "")

	a := &fakeConn{}
	b := &fakeConn{}
	c := &fakeConn{}
	r.Join("u1", "Alice", a)
	r.Join("u2", "Bob", b)
	r.Join("u3", "Carol", c)

	// Bob's buffer jams; Alice and Carol still get the message and Bob
	// stays registered (disconnect detection is not the broadcaster's job).
	b.mu.Lock()
	b.full = true
	b.mu.Unlock()

	sendMessage(r, "u1", "still here")

	aMsgs := a.received(t)
	assert.Equal(t, "still here", decodeEvent(t, aMsgs[len(aMsgs)-1]).Content)
	cMsgs := c.received(t)
	assert.Equal(t, "still here", decodeEvent(t, cMsgs[len(cMsgs)-1]).Content)
	assert.Equal(t, 3, r.Info().UserCount)
}

func TestRoomsProcessIndependently(t *testing.T) {
	h := NewHub(100, testLogger())

	r1 := h.GetOrCreateRoom("R1")
	r1.Bind("R1", "")
	r2 := h.GetOrCreateRoom("R2")
	r2.Bind("R2", "")

	a := &fakeConn{}
	b := &fakeConn{}
	r1.Join("u1", "Alice", a)
	r2.Join("u1", "Alice", b)

	sendMessage(r1, "u1", "only in R1")

	bMsgs := b.received(t)
	require.Len(t, bMsgs, 1, "no cross-room delivery")
	assert.Equal(t, protocol.MsgRoomState, bMsgs[0].Type)
	assert.Len(t, r2.History(100), 1)
}
