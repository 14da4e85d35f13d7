// FILE: logshed/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

// Filter type constants
const (
	TypeInclude = "include"
	TypeExclude = "exclude"

	LogicOr  = "or"
	LogicAnd = "and"
)

// Config holds filter configuration
type Config struct {
	// "include" passes matching records, "exclude" drops them
	Type string `toml:"type"`

	// "or" matches any pattern, "and" requires all patterns
	Logic string `toml:"logic"`

	// Regular expressions matched against the record text
	Patterns []string `toml:"patterns"`
}

// Filter applies regex-based filtering to records
type Filter struct {
	config   Config
	patterns []*regexp.Regexp
	mu       sync.RWMutex
	logger   *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalMatched   atomic.Uint64
	totalDropped   atomic.Uint64
}

// NewFilter creates a new filter from configuration
func NewFilter(cfg Config, logger *log.Logger) (*Filter, error) {
	// Set defaults
	if cfg.Type == "" {
		cfg.Type = TypeInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = LogicOr
	}

	f := &Filter{
		config:   cfg,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)),
		logger:   logger,
	}

	// Compile patterns
	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		f.patterns = append(f.patterns, re)
	}

	logger.Debug("msg", "Filter created",
		"component", "filter",
		"type", cfg.Type,
		"logic", cfg.Logic,
		"pattern_count", len(cfg.Patterns))

	return f, nil
}

// Apply checks if a record should be passed through
func (f *Filter) Apply(rec core.Record) bool {
	f.totalProcessed.Add(1)

	// No patterns means pass everything
	f.mu.RLock()
	patterns := f.patterns
	f.mu.RUnlock()

	if len(patterns) == 0 {
		return true
	}

	// Match against the fields that carry the record's identity and content
	text := rec.Message
	if rec.Level != "" {
		text = rec.Level + " " + text
	}
	if rec.Logger != "" {
		text = rec.Logger + " " + text
	}

	matched := f.matches(patterns, text)
	if matched {
		f.totalMatched.Add(1)
	}

	shouldPass := false
	switch f.config.Type {
	case TypeInclude:
		shouldPass = matched
	case TypeExclude:
		shouldPass = !matched
	}

	if !shouldPass {
		f.totalDropped.Add(1)
	}

	return shouldPass
}

// matches checks if text matches the patterns according to the logic
func (f *Filter) matches(patterns []*regexp.Regexp, text string) bool {
	switch f.config.Logic {
	case LogicOr:
		// Match any pattern
		for _, re := range patterns {
			if re.MatchString(text) {
				return true
			}
		}
		return false

	case LogicAnd:
		// Must match all patterns
		for _, re := range patterns {
			if !re.MatchString(text) {
				return false
			}
		}
		return true

	default:
		// Shouldn't happen after validation
		f.logger.Warn("msg", "Unknown filter logic",
			"component", "filter",
			"logic", f.config.Logic)
		return false
	}
}

// GetStats returns filter statistics
func (f *Filter) GetStats() map[string]any {
	return map[string]any{
		"type":            f.config.Type,
		"logic":           f.config.Logic,
		"pattern_count":   len(f.patterns),
		"total_processed": f.totalProcessed.Load(),
		"total_matched":   f.totalMatched.Load(),
		"total_dropped":   f.totalDropped.Load(),
	}
}

// UpdatePatterns allows dynamic pattern updates
func (f *Filter) UpdatePatterns(patterns []string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	// Compile all patterns first
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		compiled = append(compiled, re)
	}

	// Update atomically
	f.mu.Lock()
	f.patterns = compiled
	f.config.Patterns = patterns
	f.mu.Unlock()

	f.logger.Info("msg", "Filter patterns updated",
		"component", "filter",
		"pattern_count", len(patterns))
	return nil
}
