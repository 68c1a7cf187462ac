package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/service"
)

// ActivityStreamHandler pushes newly committed audit entries over a websocket.
type ActivityStreamHandler struct {
	stream   service.ActivityStream
	logger   zerolog.Logger
	pingEach time.Duration
}

// NewActivityStreamHandler constructs the stream handler. pingEach defaults to 30s.
func NewActivityStreamHandler(stream service.ActivityStream, pingEach time.Duration, logger zerolog.Logger) *ActivityStreamHandler {
	if pingEach <= 0 {
		pingEach = 30 * time.Second
	}
	return &ActivityStreamHandler{
		stream:   stream,
		pingEach: pingEach,
		logger:   logger.With().Str("component", "activity_stream_handler").Logger(),
	}
}

// Register binds the websocket upgrade route.
func (h *ActivityStreamHandler) Register(router fiber.Router) {
	router.Use("/stream", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		category := models.ActivityCategory(strings.TrimSpace(c.Query("category")))
		if category != "" && !category.Valid() {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown category")
		}
		c.Locals("stream_category", category)
		return c.Next()
	})
	router.Get("/stream", websocket.New(h.serve))
}

func (h *ActivityStreamHandler) serve(conn *websocket.Conn) {
	category, _ := conn.Locals("stream_category").(models.ActivityCategory)
	events, cleanup := h.stream.Subscribe(category)
	defer cleanup()

	logger := h.logger.With().Interface("user_id", conn.Locals("user_id")).Str("category", string(category)).Logger()
	logger.Info().Msg("activity stream connected")
	defer logger.Info().Msg("activity stream disconnected")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingEach)
	defer ticker.Stop()

	for {
		select {
		case activity, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(activity); err != nil {
				logger.Debug().Err(err).Msg("failed to write activity event")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
