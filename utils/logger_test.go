package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerRedactsSensitiveKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{sugar: zap.New(core).Sugar()}

	log.Info("login", "email", "a@example.com", "password", "hunter22", "refreshToken", "abc", "Authorization", "Bearer x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a@example.com", fields["email"])
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.Equal(t, "[REDACTED]", fields["refreshToken"])
	assert.Equal(t, "[REDACTED]", fields["Authorization"])
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"secret", "s3cr3t", "dangling"})
	assert.Equal(t, []interface{}{"secret", "[REDACTED]", "dangling"}, out)
}
