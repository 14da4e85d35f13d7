// FILE: logshed/src/internal/flow/ratelimiter_test.go
package flow

import (
	"strings"
	"testing"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNewRateLimiter_DisabledWhenUnconfigured(t *testing.T) {
	l, err := NewRateLimiter(Config{}, newTestLogger())
	require.NoError(t, err)
	assert.Nil(t, l)

	// Nil limiter passes everything
	assert.True(t, l.Allow(core.Record{Message: "anything"}))
	assert.Equal(t, false, l.GetStats()["enabled"])
}

func TestRateLimiter_DropPolicy(t *testing.T) {
	l, err := NewRateLimiter(Config{Rate: 0.001, Burst: 2, Policy: "drop"}, newTestLogger())
	require.NoError(t, err)
	require.NotNil(t, l)

	rec := core.Record{Message: "m"}
	assert.True(t, l.Allow(rec))
	assert.True(t, l.Allow(rec))
	assert.False(t, l.Allow(rec), "Burst exhausted")

	stats := l.GetStats()
	assert.Equal(t, uint64(1), stats["dropped_total"])
}

func TestRateLimiter_PassPolicyOnlyCounts(t *testing.T) {
	l, err := NewRateLimiter(Config{Rate: 0.001, Burst: 1, Policy: "pass"}, newTestLogger())
	require.NoError(t, err)

	rec := core.Record{Message: "m"}
	assert.True(t, l.Allow(rec))
	assert.True(t, l.Allow(rec), "Pass policy never blocks")
	assert.Equal(t, uint64(1), l.GetStats()["dropped_total"])
}

func TestRateLimiter_SizeLimit(t *testing.T) {
	l, err := NewRateLimiter(Config{MaxRecordBytes: 10}, newTestLogger())
	require.NoError(t, err)
	require.NotNil(t, l)

	assert.True(t, l.Allow(core.Record{Message: "short"}))
	assert.False(t, l.Allow(core.Record{Message: strings.Repeat("x", 11)}))
	assert.Equal(t, uint64(1), l.GetStats()["dropped_by_size_total"])
}
