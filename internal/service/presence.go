package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Websitedemo13/s17-trading-go/internal/logger"
	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

const typingKeyPrefix = "typing:"

// DefaultTypingTTL matches the client-side typing timeout.
const DefaultTypingTTL = 3 * time.Second

// PresenceService tracks who is currently typing in each team. Entries
// live in redis under a TTL so stale state expires on its own even if a
// client never sends a stop event.
type PresenceService struct {
	redis *redis.Client
	log   *logger.Logger
	ttl   time.Duration
}

func NewPresenceService(redisClient *redis.Client, log *logger.Logger) *PresenceService {
	return &PresenceService{
		redis: redisClient,
		log:   log,
		ttl:   DefaultTypingTTL,
	}
}

// SetTyping records or clears a user's typing state for a team.
func (ps *PresenceService) SetTyping(ctx context.Context, ind *model.TypingIndicator) error {
	key := typingKey(ind.TeamID, ind.UserID)

	if !ind.IsTyping {
		if err := ps.redis.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear typing state: %w", err)
		}
		return nil
	}

	ind.UpdatedAt = time.Now()
	data, err := json.Marshal(ind)
	if err != nil {
		return fmt.Errorf("marshal typing state: %w", err)
	}

	if err := ps.redis.Set(ctx, key, data, ps.ttl).Err(); err != nil {
		return fmt.Errorf("store typing state: %w", err)
	}
	return nil
}

// GetTyping returns the users currently typing in the team.
func (ps *PresenceService) GetTyping(ctx context.Context, teamID string) ([]model.TypingIndicator, error) {
	keys, err := ps.redis.Keys(ctx, typingKeyPrefix+teamID+":*").Result()
	if err != nil {
		return nil, fmt.Errorf("list typing keys: %w", err)
	}

	indicators := []model.TypingIndicator{}
	if len(keys) == 0 {
		return indicators, nil
	}

	pipe := ps.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read typing state: %w", err)
	}

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			// Expired between KEYS and GET
			continue
		}
		var ind model.TypingIndicator
		if err := json.Unmarshal([]byte(data), &ind); err != nil {
			ps.log.Warnw("bad typing payload", "key", keys[i], "error", err)
			continue
		}
		indicators = append(indicators, ind)
	}

	return indicators, nil
}

func typingKey(teamID, userID string) string {
	return typingKeyPrefix + teamID + ":" + userID
}
