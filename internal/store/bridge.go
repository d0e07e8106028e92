package store

import (
	"encoding/json"
	"sync"

	"github.com/Websitedemo13/s17-trading-go/internal/backend"
	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// TeamChannel is one live team subscription as the bridge sees it.
type TeamChannel interface {
	SendTyping(isTyping bool) error
	Close()
}

// ChannelDialer opens team channels. Satisfied by the realtime client;
// tests substitute a fake.
type ChannelDialer interface {
	Subscribe(teamID string, onEvent func(ev *model.Event)) (TeamChannel, error)
}

// realtimeDialer adapts the concrete realtime client to ChannelDialer.
type realtimeDialer struct {
	rt *backend.Realtime
}

func NewRealtimeDialer(rt *backend.Realtime) ChannelDialer {
	return &realtimeDialer{rt: rt}
}

func (d *realtimeDialer) Subscribe(teamID string, onEvent func(ev *model.Event)) (TeamChannel, error) {
	return d.rt.Subscribe(teamID, backend.EventHandler(onEvent))
}

// Bridge owns the live team subscriptions and routes their events into
// the chat store. It holds at most one channel per team: subscribing to
// a team closes any prior channel for it first.
type Bridge struct {
	mu       sync.Mutex
	dialer   ChannelDialer
	chat     *ChatStore
	log      *logger.Logger
	channels map[string]TeamChannel
}

func NewBridge(dialer ChannelDialer, chat *ChatStore, log *logger.Logger) *Bridge {
	return &Bridge{
		dialer:   dialer,
		chat:     chat,
		log:      log,
		channels: make(map[string]TeamChannel),
	}
}

// Subscribe opens the event channel for a team and returns an
// unsubscribe func. Any prior channel for the team is released before
// the new one is dialed, so the team never has two live channels. The
// unsubscribe only closes the channel it opened: a later resubscribe to
// the same team is not torn down by a stale unsubscribe.
func (b *Bridge) Subscribe(teamID string) (func(), error) {
	b.mu.Lock()
	prev := b.channels[teamID]
	delete(b.channels, teamID)
	b.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	ch, err := b.dialer.Subscribe(teamID, func(ev *model.Event) {
		b.handleEvent(teamID, ev)
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if racer, ok := b.channels[teamID]; ok {
		// A concurrent Subscribe stored a channel while we were dialing.
		// Ours is newer, so the stored one is the one to release.
		racer.Close()
	}
	b.channels[teamID] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			if b.channels[teamID] == ch {
				delete(b.channels, teamID)
			}
			b.mu.Unlock()
			ch.Close()
		})
	}
	return unsubscribe, nil
}

// Emitter returns the typing emitter for a subscribed team, or nil when
// no channel is open for it.
func (b *Bridge) Emitter(teamID string) TypingEmitter {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[teamID]
	if !ok {
		return nil
	}
	return ch
}

// Subscribed reports whether a channel is open for the team.
func (b *Bridge) Subscribed(teamID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.channels[teamID]
	return ok
}

// CloseAll tears down every open channel. Registered as a session reset
// hook.
func (b *Bridge) CloseAll() {
	b.mu.Lock()
	channels := b.channels
	b.channels = make(map[string]TeamChannel)
	b.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
}

// handleEvent routes one decoded event into the chat store. Payloads
// that fail to decode are dropped without disturbing existing state.
func (b *Bridge) handleEvent(teamID string, ev *model.Event) {
	switch ev.Type {
	case model.EventNewMessage:
		var msg model.ChatMessage
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			b.log.Debugw("dropping malformed message event", "team_id", teamID, "error", err)
			return
		}
		if msg.TeamID == "" {
			msg.TeamID = teamID
		}
		b.chat.Apply(&msg)

	case model.EventTyping:
		var ind model.TypingIndicator
		if err := json.Unmarshal(ev.Data, &ind); err != nil {
			b.log.Debugw("dropping malformed typing event", "team_id", teamID, "error", err)
			return
		}
		if ind.TeamID == "" {
			ind.TeamID = teamID
		}
		b.chat.SetTyping(&ind)

	default:
		b.log.Debugw("ignoring event", "type", ev.Type, "team_id", teamID)
	}
}
