package backend

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

const (
	pingInterval      = 30 * time.Second
	maxReconnectTries = 3
)

// EventHandler receives every decoded inbound event for a channel.
type EventHandler func(ev *model.Event)

// Realtime dials team-scoped event channels on the backend's websocket
// endpoint. Each Subscribe opens one connection carrying only that
// team's events.
type Realtime struct {
	wsURL  string
	token  func() string
	log    *logger.Logger
	dialer *websocket.Dialer
}

func NewRealtime(wsURL string, token func() string, log *logger.Logger) *Realtime {
	if token == nil {
		token = func() string { return "" }
	}
	return &Realtime{
		wsURL:  wsURL,
		token:  token,
		log:    log,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Channel is one live team subscription. Close releases the underlying
// connection; it is safe to call more than once.
type Channel struct {
	rt      *Realtime
	teamID  string
	onEvent EventHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe opens the event channel for a team. The handler runs on the
// channel's read goroutine; it must not block for long.
func (r *Realtime) Subscribe(teamID string, onEvent EventHandler) (*Channel, error) {
	conn, err := r.dial(teamID)
	if err != nil {
		return nil, fmt.Errorf("subscribe team %s: %w", teamID, err)
	}

	ch := &Channel{
		rt:      r,
		teamID:  teamID,
		onEvent: onEvent,
		conn:    conn,
		done:    make(chan struct{}),
	}

	go ch.readLoop()
	go ch.keepAlive()
	return ch, nil
}

func (r *Realtime) dial(teamID string) (*websocket.Conn, error) {
	q := url.Values{}
	q.Set("token", r.token())
	q.Set("team_id", teamID)

	conn, _, err := r.dialer.Dial(r.wsURL+"?"+q.Encode(), nil)
	return conn, err
}

// SendTyping broadcasts the local user's typing state to the team.
func (ch *Channel) SendTyping(isTyping bool) error {
	data, _ := json.Marshal(model.TypingIndicator{TeamID: ch.teamID, IsTyping: isTyping})
	return ch.writeEvent(&model.Event{Type: model.EventTyping, TeamID: ch.teamID, Data: data})
}

func (ch *Channel) writeEvent(ev *model.Event) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed || ch.conn == nil {
		return fmt.Errorf("channel for team %s is closed", ch.teamID)
	}
	return ch.conn.WriteJSON(ev)
}

// Close tears the channel down. No events are delivered after Close
// returns.
func (ch *Channel) Close() {
	ch.closeOnce.Do(func() {
		ch.mu.Lock()
		ch.closed = true
		if ch.conn != nil {
			_ = ch.conn.Close()
		}
		ch.mu.Unlock()
		close(ch.done)
	})
}

func (ch *Channel) readLoop() {
	for {
		ch.mu.Lock()
		conn := ch.conn
		closed := ch.closed
		ch.mu.Unlock()
		if closed || conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !ch.reconnect() {
				return
			}
			continue
		}

		var ev model.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			// Malformed frame: drop it, keep the channel alive
			ch.rt.log.Debugw("dropping malformed event", "team", ch.teamID, "error", err)
			continue
		}
		if ev.Type == model.EventPong {
			continue
		}
		ch.onEvent(&ev)
	}
}

// reconnect makes a bounded number of redial attempts. Giving up is
// non-fatal: the caller keeps its last snapshot.
func (ch *Channel) reconnect() bool {
	for attempt := 1; attempt <= maxReconnectTries; attempt++ {
		ch.mu.Lock()
		if ch.closed {
			ch.mu.Unlock()
			return false
		}
		ch.mu.Unlock()

		select {
		case <-ch.done:
			return false
		case <-time.After(time.Duration(attempt) * time.Second):
		}

		conn, err := ch.rt.dial(ch.teamID)
		if err != nil {
			ch.rt.log.Warnw("reconnect attempt failed", "team", ch.teamID, "attempt", attempt, "error", err)
			continue
		}

		ch.mu.Lock()
		if ch.closed {
			ch.mu.Unlock()
			conn.Close()
			return false
		}
		ch.conn = conn
		ch.mu.Unlock()
		ch.rt.log.Infow("channel reconnected", "team", ch.teamID, "attempt", attempt)
		return true
	}

	ch.rt.log.Warnw("channel gave up reconnecting", "team", ch.teamID)
	ch.Close()
	return false
}

func (ch *Channel) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ch.done:
			return
		case <-ticker.C:
			_ = ch.writeEvent(&model.Event{Type: model.EventPing})
		}
	}
}
