// FILE: logshed/src/internal/filter/chain_test.go
package filter

import (
	"testing"

	"logshed/src/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestNewChain(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"apple"}},
			{Type: TypeExclude, Patterns: []string{"banana"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)
		assert.NotNil(t, chain)
		assert.Len(t, chain.filters, 2)
	})

	t.Run("ErrorInvalidRegexInChain", func(t *testing.T) {
		configs := []Config{
			{Patterns: []string{"apple"}},
			{Patterns: []string{"["}},
		}
		chain, err := NewChain(configs, logger)
		assert.Error(t, err)
		assert.Nil(t, chain)
		assert.Contains(t, err.Error(), "filter[1]")
	})
}

func TestChain_Apply(t *testing.T) {
	logger := newTestLogger()
	rec := core.Record{Message: "an apple a day"}

	t.Run("EmptyChain", func(t *testing.T) {
		chain, err := NewChain([]Config{}, logger)
		assert.NoError(t, err)
		assert.True(t, chain.Apply(rec))
	})

	t.Run("AllFiltersPass", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"apple"}},
			{Type: TypeInclude, Patterns: []string{"day"}},
			{Type: TypeExclude, Patterns: []string{"banana"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)
		assert.True(t, chain.Apply(rec))
	})

	t.Run("OneFilterFails", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"apple"}},
			{Type: TypeExclude, Patterns: []string{"day"}},
			{Type: TypeInclude, Patterns: []string{"a"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)
		assert.False(t, chain.Apply(rec))
	})

	t.Run("FirstFilterFails", func(t *testing.T) {
		configs := []Config{
			{Type: TypeInclude, Patterns: []string{"banana"}},
			{Type: TypeInclude, Patterns: []string{"apple"}},
		}
		chain, err := NewChain(configs, logger)
		assert.NoError(t, err)
		assert.False(t, chain.Apply(rec))
	})
}
