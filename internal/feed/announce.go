package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jackpot is the payload broadcast when a spin wins.
type Jackpot struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Payout      int64  `json:"payout"`
	Streak      int    `json:"streak"`
}

// Announcer broadcasts jackpot events. Delivery is best effort; spin
// correctness never depends on it.
type Announcer interface {
	AnnounceJackpot(ctx context.Context, j Jackpot) error
}

// RedisAnnouncer publishes jackpots on a Redis pub/sub channel consumed by
// the live page.
type RedisAnnouncer struct {
	client  *redis.Client
	channel string
}

// NewRedisAnnouncer creates an announcer publishing on the given channel.
func NewRedisAnnouncer(client *redis.Client, channel string) *RedisAnnouncer {
	return &RedisAnnouncer{client: client, channel: channel}
}

// AnnounceJackpot implements Announcer.
func (a *RedisAnnouncer) AnnounceJackpot(ctx context.Context, j Jackpot) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to marshal jackpot: %w", err)
	}
	if err := a.client.Publish(ctx, a.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish jackpot: %w", err)
	}
	return nil
}

// NopAnnouncer drops all announcements. Used in tests and when Redis is
// not configured.
type NopAnnouncer struct{}

// AnnounceJackpot implements Announcer.
func (NopAnnouncer) AnnounceJackpot(_ context.Context, j Jackpot) error {
	log.Debug().Str("account", j.AccountID).Int64("payout", j.Payout).Msg("jackpot announcement dropped (no announcer configured)")
	return nil
}
