package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// ChatGateway is the slice of the remote data gateway the chat store
// needs.
type ChatGateway interface {
	History(ctx context.Context, teamID string, limit int) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, teamID string, req *model.SendMessageRequest) (*model.ChatMessage, error)
}

// ChatStore owns the per-team message lists and the remote typing
// indicators. Message lists are append-only, ordered by creation time
// ascending, and deduplicated by id: the sender's own realtime echo and
// any duplicate delivery collapse into one entry.
type ChatStore struct {
	mu        sync.Mutex
	gw        ChatGateway
	log       *logger.Logger
	typingTTL time.Duration

	messages map[string][]model.ChatMessage
	seen     map[string]map[string]bool
	typing   map[string]map[string]model.TypingIndicator
}

func NewChatStore(gw ChatGateway, log *logger.Logger) *ChatStore {
	return &ChatStore{
		gw:        gw,
		log:       log,
		typingTTL: DefaultTypingTimeout,
		messages:  make(map[string][]model.ChatMessage),
		seen:      make(map[string]map[string]bool),
		typing:    make(map[string]map[string]model.TypingIndicator),
	}
}

// Messages returns a copy of the team's ordered message list.
func (s *ChatStore) Messages(teamID string) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages[teamID]))
	copy(out, s.messages[teamID])
	return out
}

// Apply inserts an inbound message in timestamp order. Duplicate ids
// are dropped regardless of delivery order.
func (s *ChatStore) Apply(msg *model.ChatMessage) {
	if msg == nil || msg.ID == "" || msg.TeamID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(*msg)
}

func (s *ChatStore) insertLocked(msg model.ChatMessage) {
	ids := s.seen[msg.TeamID]
	if ids == nil {
		ids = make(map[string]bool)
		s.seen[msg.TeamID] = ids
	}
	if ids[msg.ID] {
		return
	}
	ids[msg.ID] = true

	list := s.messages[msg.TeamID]
	// Most messages arrive in order: find the insertion point from the end
	i := len(list)
	for i > 0 && list[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	list = append(list, model.ChatMessage{})
	copy(list[i+1:], list[i:])
	list[i] = msg
	s.messages[msg.TeamID] = list
}

// LoadHistory replaces nothing on failure: the last snapshot stays and
// the error is only logged (read-path fallback policy).
func (s *ChatStore) LoadHistory(ctx context.Context, teamID string, limit int) {
	msgs, err := s.gw.History(ctx, teamID, limit)
	if err != nil {
		s.log.Warnw("history fetch failed, keeping snapshot", "team", teamID, "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.insertLocked(m)
	}
}

// Send appends the message optimistically, then writes it through the
// gateway. On failure the optimistic entry is rolled back and the error
// returned for the caller to surface.
func (s *ChatStore) Send(ctx context.Context, teamID string, sender *model.User, content string) error {
	msg := model.ChatMessage{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	s.Apply(&msg)

	stored, err := s.gw.SendMessage(ctx, teamID, &model.SendMessageRequest{ID: msg.ID, Content: content})
	if err != nil {
		s.remove(teamID, msg.ID)
		return err
	}

	// Adopt the server timestamp so ordering agrees across clients
	if stored != nil && stored.ID == msg.ID {
		s.replace(teamID, *stored)
	}
	return nil
}

func (s *ChatStore) remove(teamID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.messages[teamID]
	for i := range list {
		if list[i].ID == id {
			s.messages[teamID] = append(list[:i], list[i+1:]...)
			delete(s.seen[teamID], id)
			return
		}
	}
}

func (s *ChatStore) replace(teamID string, msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.messages[teamID]
	for i := range list {
		if list[i].ID == msg.ID {
			list[i] = msg
			sort.SliceStable(list, func(a, b int) bool { return list[a].CreatedAt.Before(list[b].CreatedAt) })
			return
		}
	}
}

// SetTyping creates or refreshes the (user, team) typing entry; a stop
// event removes it. At most one entry exists per pair.
func (s *ChatStore) SetTyping(ind *model.TypingIndicator) {
	if ind == nil || ind.TeamID == "" || ind.UserID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.typing[ind.TeamID]
	if !ind.IsTyping {
		delete(users, ind.UserID)
		return
	}

	if users == nil {
		users = make(map[string]model.TypingIndicator)
		s.typing[ind.TeamID] = users
	}
	entry := *ind
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	users[ind.UserID] = entry
}

// TypingNames returns the display names of remote users actively typing
// in the team, excluding the local user. Entries older than the typing
// TTL are pruned as a side effect.
func (s *ChatStore) TypingNames(teamID, excludeUserID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.typingTTL)
	var names []string
	for userID, ind := range s.typing[teamID] {
		if ind.UpdatedAt.Before(cutoff) {
			delete(s.typing[teamID], userID)
			continue
		}
		if userID == excludeUserID {
			continue
		}
		name := ind.DisplayName
		if name == "" {
			name = userID
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops all team-scoped state. Called on sign-out.
func (s *ChatStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make(map[string][]model.ChatMessage)
	s.seen = make(map[string]map[string]bool)
	s.typing = make(map[string]map[string]model.TypingIndicator)
}
