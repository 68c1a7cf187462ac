package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
)

// ActivityPublisher fans persisted audit entries out to downstream consumers.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, activity dto.AdminActivityResponse) error
}

// ActivityEvent is the payload published for every committed audit entry.
type ActivityEvent struct {
	Activity dto.AdminActivityResponse `json:"activity"`
	SentAt   time.Time                 `json:"sent_at"`
}

type activityBus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
}

// NewActivityPublisher publishes to a Redis channel and a NATS subject derived
// from channelBase ("edutrack:activity" -> "edutrack.activity"). Either client may be nil.
func NewActivityPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ActivityPublisher {
	channelBase = strings.TrimSpace(channelBase)
	if channelBase == "" {
		channelBase = "edutrack:activity"
	}
	return &activityBus{
		redis:        redisClient,
		redisChannel: channelBase,
		nats:         natsConn,
		natsSubject:  strings.ReplaceAll(channelBase, ":", "."),
		logger:       logger.With().Str("component", "activity_bus").Logger(),
	}
}

func (b *activityBus) PublishActivity(ctx context.Context, activity dto.AdminActivityResponse) error {
	payload, err := json.Marshal(ActivityEvent{Activity: activity, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if b.redis != nil {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}

	b.logger.Debug().Uint("activity_id", activity.ID).Str("category", string(activity.Category)).Msg("activity event published")
	return nil
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
