package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/observability"
)

const (
	activityStreamBufferSize = 32
	activityStreamRetryMin   = 100 * time.Millisecond
	activityStreamRetryMax   = 5 * time.Second
)

// ActivityStream fans committed audit entries out to live dashboard clients.
type ActivityStream interface {
	ActivityPublisher
	Start(ctx context.Context)
	Subscribe(category models.ActivityCategory) (<-chan dto.AdminActivityResponse, func())
}

type activityStream struct {
	next         ActivityPublisher
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	retryMin     time.Duration
	retryMax     time.Duration

	mu          sync.RWMutex
	subscribers map[chan dto.AdminActivityResponse]models.ActivityCategory
}

// NewActivityStream wraps next. With Redis or NATS configured, clients are fed
// from the shared channel so every replica sees every entry; otherwise
// entries are delivered in-process.
func NewActivityStream(next ActivityPublisher, redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ActivityStream {
	channelBase = strings.TrimSpace(channelBase)
	if channelBase == "" {
		channelBase = "edutrack:activity"
	}
	return &activityStream{
		next:         next,
		redis:        redisClient,
		redisChannel: channelBase,
		nats:         natsConn,
		natsSubject:  strings.ReplaceAll(channelBase, ":", "."),
		logger:       logger.With().Str("component", "activity_stream").Logger(),
		retryMin:     activityStreamRetryMin,
		retryMax:     activityStreamRetryMax,
		subscribers:  make(map[chan dto.AdminActivityResponse]models.ActivityCategory),
	}
}

func (s *activityStream) PublishActivity(ctx context.Context, activity dto.AdminActivityResponse) error {
	var err error
	if s.next != nil {
		err = s.next.PublishActivity(ctx, activity)
	}
	if s.redis == nil && s.nats == nil {
		s.broadcast(activity)
	}
	return err
}

// Start consumes the shared channel until ctx is cancelled. Redis wins when both
// transports are configured since the publisher writes to both.
func (s *activityStream) Start(ctx context.Context) {
	switch {
	case s.redis != nil:
		go s.consumeRedis(ctx)
	case s.nats != nil:
		s.consumeNATS(ctx)
	}
}

func (s *activityStream) Subscribe(category models.ActivityCategory) (<-chan dto.AdminActivityResponse, func()) {
	ch := make(chan dto.AdminActivityResponse, activityStreamBufferSize)

	s.mu.Lock()
	s.subscribers[ch] = category
	s.mu.Unlock()
	observability.ActivityStreamClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			close(ch)
			s.mu.Unlock()
			observability.ActivityStreamClients().Dec()
		})
	}
	return ch, cleanup
}

// broadcast drops entries for subscribers whose buffer is full.
func (s *activityStream) broadcast(activity dto.AdminActivityResponse) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch, category := range s.subscribers {
		if category != "" && category != activity.Category {
			continue
		}
		select {
		case ch <- activity:
		default:
			s.logger.Debug().Uint("activity_id", activity.ID).Msg("dropping activity for slow stream client")
		}
	}
}

// consumeRedis keeps the subscription alive across connection failures. The
// pubsub reconnects and resubscribes on the next receive; failures back off
// exponentially up to retryMax and reset after a delivered message.
func (s *activityStream) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	delay := s.retryMin
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Dur("retry_in", delay).Msg("activity redis subscription interrupted")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.retryMax {
				delay = s.retryMax
			}
			continue
		}
		delay = s.retryMin
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *activityStream) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to activity subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain activity subscription")
		}
	}()
}

func (s *activityStream) handleEvent(payload []byte) {
	var event ActivityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid activity event payload")
		return
	}
	s.broadcast(event.Activity)
}
