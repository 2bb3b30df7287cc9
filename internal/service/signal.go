package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

// SignalService fans chat messages out over redis pub/sub and keeps the hot
// tail of each chat in a capped redis list.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// recentDepth caps the cached message tail per chat.
const recentDepth = 100

func (s *SignalService) Publish(ctx context.Context, msg domain.Message) error {
	jsonstr, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, recentKey(msg.ChatID), jsonstr)
	pipe.LTrim(ctx, recentKey(msg.ChatID), 0, recentDepth-1)
	pipe.Publish(ctx, channelKey(msg.ChatID), jsonstr)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the newest cached messages, newest first. An empty result
// just means the cache is cold; the caller falls back to the store.
func (s *SignalService) Recent(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	if limit > recentDepth {
		limit = recentDepth
	}
	raw, err := s.rdb.LRange(ctx, recentKey(chatID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Subscribe streams a chat's messages until the context is cancelled. The
// returned close function must be called to release the subscription.
func (s *SignalService) Subscribe(ctx context.Context, chatID int64) (<-chan domain.Message, func(), error) {
	sub := s.rdb.Subscribe(ctx, channelKey(chatID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	out := make(chan domain.Message)
	go func() {
		defer close(out)
		for item := range sub.Channel() {
			var msg domain.Message
			if err := json.Unmarshal([]byte(item.Payload), &msg); err != nil {
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { sub.Close() }, nil
}

func recentKey(chatID int64) string  { return fmt.Sprintf("chat:recent:%d", chatID) }
func channelKey(chatID int64) string { return fmt.Sprintf("chat:channel:%d", chatID) }
