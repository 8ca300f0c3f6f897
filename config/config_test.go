package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artistevents/internal/domain"
)

func setProductionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setProductionEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "log", cfg.Reminder.Channel)
	assert.Equal(t, domain.DefaultReminderWindow(), cfg.Reminder.Window())
	assert.Equal(t, domain.DefaultReminderSweepInterval, cfg.Reminder.Interval)
	assert.True(t, cfg.Reminder.SchedulerEnabled)
	assert.Equal(t, 10, cfg.Mailer.SendConcurrency)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setProductionEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REMINDER_WINDOW_LOWER", "50m")
	t.Setenv("REMINDER_WINDOW_UPPER", "60m")
	t.Setenv("REMINDER_SWEEP_INTERVAL", "10m")
	t.Setenv("REMINDER_CHANNEL", "RabbitMQ")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 50*time.Minute, cfg.Reminder.WindowLower)
	assert.Equal(t, 10*time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, "rabbitmq", cfg.Reminder.Channel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"window narrower than interval", map[string]string{"REMINDER_SWEEP_INTERVAL": "10m"}},
		{"inverted window", map[string]string{"REMINDER_WINDOW_LOWER": "60m", "REMINDER_WINDOW_UPPER": "55m"}},
		{"bad duration", map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{"unknown channel", map[string]string{"REMINDER_CHANNEL": "sms"}},
		{"bad bool", map[string]string{"REMINDER_SCHEDULER_ENABLED": "maybe"}},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"zero send concurrency", map[string]string{"EMAIL_SEND_CONCURRENCY": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setProductionEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
