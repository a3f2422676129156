package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

const channelPrefix = "beet:presence:"

func channelName(code domain.MeetingCode) string {
	return channelPrefix + string(code)
}

// RedisBus shares presence between instances over Redis pub/sub.
type RedisBus struct {
	client redis.UniversalClient
}

var _ core.PresenceBus = (*RedisBus)(nil)

func NewRedisBus(client redis.UniversalClient) *RedisBus {
	return &RedisBus{client: client}
}

// DialRedis connects and pings.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func encodeEvent(ev core.PresenceEvent) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(payload string) (core.PresenceEvent, error) {
	var ev core.PresenceEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}

func (b *RedisBus) Publish(ctx context.Context, ev core.PresenceEvent) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("encode presence: %w", err)
	}
	if err := b.client.Publish(ctx, channelName(ev.Code), payload).Err(); err != nil {
		return fmt.Errorf("publish presence: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, code domain.MeetingCode, fn func(core.PresenceEvent)) (func(), error) {
	ps := b.client.Subscribe(ctx, channelName(code))
	// Receive blocks until the subscription is confirmed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe presence %s: %w", code, err)
	}

	ch := ps.Channel()
	go func() {
		for msg := range ch {
			ev, err := decodeEvent(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Str("module", "presence.redis").Str("channel", msg.Channel).Msg("bad presence payload")
				continue
			}
			fn(ev)
		}
		log.Debug().Str("module", "presence.redis").Str("code", string(code)).Msg("subscription closed")
	}()

	return func() { _ = ps.Close() }, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
