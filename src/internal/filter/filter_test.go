// FILE: logshed/src/internal/filter/filter_test.go
package filter

import (
	"testing"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNewFilter(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessWithDefaults", func(t *testing.T) {
		cfg := Config{Patterns: []string{"test"}}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, TypeInclude, f.config.Type)
		assert.Equal(t, LogicOr, f.config.Logic)
	})

	t.Run("SuccessWithCustomConfig", func(t *testing.T) {
		cfg := Config{
			Type:     TypeExclude,
			Logic:    LogicAnd,
			Patterns: []string{"test", "pattern"},
		}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, TypeExclude, f.config.Type)
		assert.Equal(t, LogicAnd, f.config.Logic)
		assert.Len(t, f.patterns, 2)
	})

	t.Run("ErrorInvalidRegex", func(t *testing.T) {
		cfg := Config{Patterns: []string{"["}}
		f, err := NewFilter(cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, f)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})
}

func TestFilter_Apply(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name     string
		cfg      Config
		rec      core.Record
		expected bool
	}{
		// Include OR logic
		{
			name:     "IncludeOR_MatchOne",
			cfg:      Config{Type: TypeInclude, Logic: LogicOr, Patterns: []string{"apple", "banana"}},
			rec:      core.Record{Message: "this is an apple"},
			expected: true,
		},
		{
			name:     "IncludeOR_NoMatch",
			cfg:      Config{Type: TypeInclude, Logic: LogicOr, Patterns: []string{"apple", "banana"}},
			rec:      core.Record{Message: "this is a pear"},
			expected: false,
		},
		// Include AND logic
		{
			name:     "IncludeAND_MatchAll",
			cfg:      Config{Type: TypeInclude, Logic: LogicAnd, Patterns: []string{"apple", "doctor"}},
			rec:      core.Record{Message: "an apple keeps the doctor away"},
			expected: true,
		},
		{
			name:     "IncludeAND_MatchOne",
			cfg:      Config{Type: TypeInclude, Logic: LogicAnd, Patterns: []string{"apple", "doctor"}},
			rec:      core.Record{Message: "this is an apple"},
			expected: false,
		},
		// Exclude OR logic
		{
			name:     "ExcludeOR_MatchOne",
			cfg:      Config{Type: TypeExclude, Logic: LogicOr, Patterns: []string{"error", "fatal"}},
			rec:      core.Record{Message: "this is an error"},
			expected: false,
		},
		{
			name:     "ExcludeOR_NoMatch",
			cfg:      Config{Type: TypeExclude, Logic: LogicOr, Patterns: []string{"error", "fatal"}},
			rec:      core.Record{Message: "this is a warning"},
			expected: true,
		},
		// Edge cases
		{
			name:     "NoPatterns",
			cfg:      Config{Type: TypeInclude, Patterns: []string{}},
			rec:      core.Record{Message: "any message"},
			expected: true,
		},
		{
			name:     "EmptyRecord_DoesNotMatchSpace",
			cfg:      Config{Type: TypeInclude, Patterns: []string{" "}},
			rec:      core.Record{},
			expected: false,
		},
		{
			name:     "MatchOnLevel",
			cfg:      Config{Type: TypeInclude, Patterns: []string{"ERROR"}},
			rec:      core.Record{Level: "ERROR", Message: "A message"},
			expected: true,
		},
		{
			name:     "MatchOnLogger",
			cfg:      Config{Type: TypeInclude, Patterns: []string{"app\\.Database"}},
			rec:      core.Record{Logger: "app.Database", Message: "A message"},
			expected: true,
		},
		{
			name:     "MatchOnCombinedFields",
			cfg:      Config{Type: TypeInclude, Patterns: []string{"^app ERROR"}},
			rec:      core.Record{Logger: "app", Level: "ERROR", Message: "A message"},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFilter(tc.cfg, logger)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, f.Apply(tc.rec))
		})
	}
}

func TestFilter_UpdatePatterns(t *testing.T) {
	logger := newTestLogger()
	f, err := NewFilter(Config{Patterns: []string{"apple"}}, logger)
	assert.NoError(t, err)

	assert.True(t, f.Apply(core.Record{Message: "apple pie"}))

	assert.NoError(t, f.UpdatePatterns([]string{"banana"}))
	assert.False(t, f.Apply(core.Record{Message: "apple pie"}))
	assert.True(t, f.Apply(core.Record{Message: "banana split"}))

	assert.Error(t, f.UpdatePatterns([]string{"["}))
}
