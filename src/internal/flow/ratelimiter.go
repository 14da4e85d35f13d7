// FILE: logshed/src/internal/flow/ratelimiter.go
package flow

import (
	"strings"
	"sync/atomic"

	"logshed/src/internal/core"
	"logshed/src/internal/tokenbucket"

	"github.com/lixenwraith/log"
)

// Rate limit policies
const (
	PolicyPass = "pass"
	PolicyDrop = "drop"
)

// Config holds pipeline-level rate limit settings
type Config struct {
	// Records per second, 0 disables the limiter
	Rate float64 `toml:"rate"`

	// Burst capacity, defaults to Rate
	Burst float64 `toml:"burst"`

	// "drop" enforces the limit, "pass" only counts
	Policy string `toml:"policy"`

	// Records with a message larger than this are dropped, 0 disables
	MaxRecordBytes int64 `toml:"max_record_bytes"`
}

// RateLimiter enforces rate limits on records flowing through a pipeline.
type RateLimiter struct {
	bucket *tokenbucket.TokenBucket
	policy string
	logger *log.Logger

	maxRecordBytes     int64
	droppedBySizeCount atomic.Uint64
	droppedCount       atomic.Uint64
}

// NewRateLimiter creates a pipeline-level rate limiter. A zero rate
// returns nil, nil meaning no limiting.
func NewRateLimiter(cfg Config, logger *log.Logger) (*RateLimiter, error) {
	if cfg.Rate <= 0 && cfg.MaxRecordBytes <= 0 {
		return nil, nil
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Rate
	}

	policy := PolicyDrop
	if strings.ToLower(cfg.Policy) == PolicyPass {
		policy = PolicyPass
	}

	l := &RateLimiter{
		policy:         policy,
		logger:         logger,
		maxRecordBytes: cfg.MaxRecordBytes,
	}
	if cfg.Rate > 0 {
		l.bucket = tokenbucket.New(burst, cfg.Rate)
	}

	logger.Debug("msg", "Rate limiter created",
		"component", "rate_limiter",
		"rate", cfg.Rate,
		"burst", burst,
		"policy", policy)
	return l, nil
}

// Allow reports whether the record may pass. A nil limiter passes everything.
func (l *RateLimiter) Allow(rec core.Record) bool {
	if l == nil {
		return true
	}

	// Size limit applies regardless of token state
	if l.maxRecordBytes > 0 && int64(len(rec.Message)) > l.maxRecordBytes {
		l.droppedBySizeCount.Add(1)
		return l.policy == PolicyPass
	}

	if l.bucket != nil && !l.bucket.Allow() {
		l.droppedCount.Add(1)
		return l.policy == PolicyPass
	}

	return true
}

// GetStats returns rate limiter statistics.
func (l *RateLimiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{"enabled": false}
	}

	stats := map[string]any{
		"enabled":               true,
		"policy":                l.policy,
		"dropped_total":         l.droppedCount.Load(),
		"dropped_by_size_total": l.droppedBySizeCount.Load(),
		"max_record_bytes":      l.maxRecordBytes,
	}
	if l.bucket != nil {
		stats["tokens"] = l.bucket.Tokens()
	}
	return stats
}
