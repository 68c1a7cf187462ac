package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("EDUTRACK_JWT_SECRET", "secret")
	t.Setenv("EDUTRACK_DATABASE_URL", "postgres://localhost/edutrack")
	t.Setenv("EDUTRACK_APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("EDUTRACK_ACTIVITY_FEED_TTL", "2m")
	t.Setenv("EDUTRACK_NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Asia/Jakarta", cfg.Timezone.String())
	require.Equal(t, 2*time.Minute, cfg.ActivityFeedTTL)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Equal(t, "edutrack:activity", cfg.EventsChannel)
	require.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	require.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("EDUTRACK_JWT_SECRET", "")
	t.Setenv("EDUTRACK_DATABASE_URL", "postgres://localhost/edutrack")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("EDUTRACK_JWT_SECRET", "secret")
	t.Setenv("EDUTRACK_DATABASE_URL", "postgres://localhost/edutrack")
	t.Setenv("EDUTRACK_APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}
