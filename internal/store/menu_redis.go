package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/models"
)

// RedisMenuSource keeps the menu document under one key and announces new
// versions on a pub/sub channel. A message carrying a document is used as is;
// an empty message means "re-read the key".
type RedisMenuSource struct {
	client  redis.UniversalClient
	key     string
	channel string
	logger  *zap.Logger
}

func NewRedisMenuSource(client redis.UniversalClient, key, channel string, logger *zap.Logger) *RedisMenuSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMenuSource{client: client, key: key, channel: channel, logger: logger}
}

func (s *RedisMenuSource) Load(ctx context.Context) (*models.Menu, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: redis key %s", ErrMenuNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	return ParseMenu(data)
}

// Publish stores menu under the key and notifies watchers.
func (s *RedisMenuSource) Publish(ctx context.Context, menu *models.Menu) error {
	if err := ValidateMenu(menu); err != nil {
		return err
	}
	data, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("store menu: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("publish menu: %w", err)
	}
	return nil
}

func (s *RedisMenuSource) Watch(ctx context.Context) (<-chan *models.Menu, error) {
	sub := s.client.Subscribe(ctx, s.channel)
	// Wait for the subscription to be confirmed so no update published after
	// Watch returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", s.channel, err)
	}

	out := make(chan *models.Menu)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				menu, err := s.decode(ctx, msg.Payload)
				if err != nil {
					s.logger.Error("menu update rejected", zap.String("channel", s.channel), zap.Error(err))
					continue
				}
				select {
				case out <- menu:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *RedisMenuSource) decode(ctx context.Context, payload string) (*models.Menu, error) {
	if payload == "" {
		return s.Load(ctx)
	}
	return ParseMenu([]byte(payload))
}
