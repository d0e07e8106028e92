package store

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

type fakeChannel struct {
	mu        sync.Mutex
	teamID    string
	onEvent   func(ev *model.Event)
	closed    bool
	typingLog []bool
}

func (c *fakeChannel) SendTyping(isTyping bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typingLog = append(c.typingLog, isTyping)
	return nil
}

func (c *fakeChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) deliver(t *testing.T, eventType string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	c.onEvent(&model.Event{Type: eventType, TeamID: c.teamID, Data: data})
}

func (c *fakeChannel) deliverRaw(eventType string, raw string) {
	c.onEvent(&model.Event{Type: eventType, TeamID: c.teamID, Data: json.RawMessage(raw)})
}

type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	// liveAtDial records, per Subscribe call, how many channels for the
	// same team were still open when the dial happened.
	liveAtDial []int
	err        error
}

func (d *fakeDialer) Subscribe(teamID string, onEvent func(ev *model.Event)) (TeamChannel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	live := 0
	for _, ch := range d.channels {
		if ch.teamID == teamID && !ch.isClosed() {
			live++
		}
	}
	d.liveAtDial = append(d.liveAtDial, live)
	ch := &fakeChannel{teamID: teamID, onEvent: onEvent}
	d.channels = append(d.channels, ch)
	return ch, nil
}

func newTestBridge() (*Bridge, *ChatStore, *fakeDialer) {
	chat := NewChatStore(&fakeChatGateway{}, logger.Nop())
	dialer := &fakeDialer{}
	return NewBridge(dialer, chat, logger.Nop()), chat, dialer
}

func TestBridgeAtMostOneChannelPerTeam(t *testing.T) {
	b, _, dialer := newTestBridge()

	_, err := b.Subscribe("team-1")
	require.NoError(t, err)
	_, err = b.Subscribe("team-1")
	require.NoError(t, err)

	require.Len(t, dialer.channels, 2)
	require.True(t, dialer.channels[0].isClosed(), "resubscribe must close the prior channel")
	require.False(t, dialer.channels[1].isClosed())
	require.True(t, b.Subscribed("team-1"))
}

func TestBridgeResubscribeReleasesPriorBeforeDialing(t *testing.T) {
	b, _, dialer := newTestBridge()

	_, err := b.Subscribe("team-1")
	require.NoError(t, err)
	_, err = b.Subscribe("team-1")
	require.NoError(t, err)

	// The prior channel must already be closed when the replacement is
	// dialed; the team never has two live channels at once.
	require.Equal(t, []int{0, 0}, dialer.liveAtDial)
}

func TestBridgeUnsubscribe(t *testing.T) {
	b, _, dialer := newTestBridge()

	unsub, err := b.Subscribe("team-1")
	require.NoError(t, err)
	unsub()
	unsub() // second call is a no-op

	require.True(t, dialer.channels[0].isClosed())
	require.False(t, b.Subscribed("team-1"))
}

func TestBridgeStaleUnsubscribeLeavesNewChannelAlone(t *testing.T) {
	b, _, dialer := newTestBridge()

	staleUnsub, err := b.Subscribe("team-1")
	require.NoError(t, err)
	_, err = b.Subscribe("team-1")
	require.NoError(t, err)

	staleUnsub()
	require.True(t, b.Subscribed("team-1"), "a stale unsubscribe must not tear down the replacement channel")
	require.False(t, dialer.channels[1].isClosed())
}

func TestBridgeSubscribeError(t *testing.T) {
	b, _, dialer := newTestBridge()
	dialer.err = errors.New("dial refused")

	_, err := b.Subscribe("team-1")
	require.Error(t, err)
	require.False(t, b.Subscribed("team-1"))
}

func TestBridgeFailedResubscribeLeavesTeamUnsubscribed(t *testing.T) {
	b, _, dialer := newTestBridge()

	_, err := b.Subscribe("team-1")
	require.NoError(t, err)

	dialer.err = errors.New("dial refused")
	_, err = b.Subscribe("team-1")
	require.Error(t, err)

	// The prior channel was released before the failed dial, so nothing
	// is left subscribed.
	require.True(t, dialer.channels[0].isClosed())
	require.False(t, b.Subscribed("team-1"))
}

func TestBridgeRoutesMessageEvents(t *testing.T) {
	b, chat, dialer := newTestBridge()
	_, err := b.Subscribe("team-1")
	require.NoError(t, err)

	ch := dialer.channels[0]
	ch.deliver(t, model.EventNewMessage, model.ChatMessage{ID: "m1", TeamID: "team-1", Content: "hi", CreatedAt: time.Now()})
	// Missing team id in the payload is filled from the channel.
	ch.deliver(t, model.EventNewMessage, model.ChatMessage{ID: "m2", Content: "again", CreatedAt: time.Now()})

	msgs := chat.Messages("team-1")
	require.Len(t, msgs, 2)
	require.Equal(t, "m1", msgs[0].ID)
}

func TestBridgeRoutesTypingEvents(t *testing.T) {
	b, chat, dialer := newTestBridge()
	_, err := b.Subscribe("team-1")
	require.NoError(t, err)

	ch := dialer.channels[0]
	ch.deliver(t, model.EventTyping, model.TypingIndicator{UserID: "u2", DisplayName: "Bob", IsTyping: true, UpdatedAt: time.Now()})
	require.Equal(t, []string{"Bob"}, chat.TypingNames("team-1", "u1"))

	ch.deliver(t, model.EventTyping, model.TypingIndicator{UserID: "u2", IsTyping: false})
	require.Empty(t, chat.TypingNames("team-1", "u1"))
}

func TestBridgeDropsMalformedEvents(t *testing.T) {
	b, chat, dialer := newTestBridge()
	_, err := b.Subscribe("team-1")
	require.NoError(t, err)

	ch := dialer.channels[0]
	ch.deliverRaw(model.EventNewMessage, `{"id": 42}`)
	ch.deliverRaw(model.EventTyping, `not json`)
	ch.deliverRaw("unknown_event", `{}`)

	require.Empty(t, chat.Messages("team-1"))
	require.Empty(t, chat.TypingNames("team-1", ""))
}

func TestBridgeEmitter(t *testing.T) {
	b, _, dialer := newTestBridge()

	require.Nil(t, b.Emitter("team-1"))

	_, err := b.Subscribe("team-1")
	require.NoError(t, err)

	em := b.Emitter("team-1")
	require.NotNil(t, em)
	require.NoError(t, em.SendTyping(true))
	require.Equal(t, []bool{true}, dialer.channels[0].typingLog)
}

func TestBridgeCloseAll(t *testing.T) {
	b, _, dialer := newTestBridge()
	_, err := b.Subscribe("team-1")
	require.NoError(t, err)
	_, err = b.Subscribe("team-2")
	require.NoError(t, err)

	b.CloseAll()

	for _, ch := range dialer.channels {
		require.True(t, ch.isClosed())
	}
	require.False(t, b.Subscribed("team-1"))
	require.False(t, b.Subscribed("team-2"))
}
