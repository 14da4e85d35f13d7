// FILE: logshed/src/internal/service/pipeline_test.go
package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logshed/src/internal/config"
	"logshed/src/internal/core"
	"logshed/src/internal/filter"
	"logshed/src/internal/flow"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// writeObjectFile produces a source file in the object sink's frame format.
func writeObjectFile(t *testing.T, path string, recs []core.Record) {
	t.Helper()

	var out bytes.Buffer
	for _, rec := range recs {
		var payload bytes.Buffer
		require.NoError(t, gob.NewEncoder(&payload).Encode(rec))

		var header [4]byte
		binary.BigEndian.PutUint32(header[:], uint32(payload.Len()))
		out.Write(header[:])
		out.Write(payload.Bytes())
	}
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func replayConfig(objPath, outPath string) *config.PipelineConfig {
	return &config.PipelineConfig{
		Name: "replay",
		Sources: []config.SourceConfig{
			{Type: "object_file", Options: map[string]any{"path": objPath}},
		},
		Format: config.FormatConfig{Name: "json"},
		Sinks: []config.SinkConfig{
			{Type: "file", Options: map[string]any{"path": outPath}},
		},
	}
}

func TestService_PipelineLifecycle(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	writeObjectFile(t, objPath, []core.Record{{Message: "m"}})

	cfg := replayConfig(objPath, filepath.Join(dir, "out.log"))
	require.NoError(t, svc.NewPipeline(cfg))

	assert.Equal(t, []string{"replay"}, svc.ListPipelines())

	p, err := svc.GetPipeline("replay")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = svc.GetPipeline("missing")
	assert.Error(t, err)

	// Duplicate names are rejected
	assert.Error(t, svc.NewPipeline(cfg))

	require.NoError(t, svc.RemovePipeline("replay"))
	assert.Empty(t, svc.ListPipelines())
	assert.Error(t, svc.RemovePipeline("replay"))
}

func TestService_ReplayEndToEnd(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	outPath := filepath.Join(dir, "out.log")

	recs := []core.Record{
		{Logger: "app.Main", Timestamp: 1000, Level: "INFO", Thread: "main", Message: "first"},
		{Logger: "app.Main", Timestamp: 2000, Level: "ERROR", Thread: "main", Message: "second"},
	}
	writeObjectFile(t, objPath, recs)

	require.NoError(t, svc.NewPipeline(replayConfig(objPath, outPath)))

	p, err := svc.GetPipeline("replay")
	require.NoError(t, err)
	p.Drain()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(outPath)
		return err == nil && bytes.Count(data, []byte("\r\n\r\n")) == 2
	}, 2*time.Second, 10*time.Millisecond, "Both records written with record separators")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message": "first"`)
	assert.Contains(t, string(data), `"message": "second"`)

	stats := p.GetStats()
	assert.Equal(t, uint64(2), stats["total_processed"])
}

func TestService_FilterDropsRecords(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	outPath := filepath.Join(dir, "out.log")

	writeObjectFile(t, objPath, []core.Record{
		{Level: "INFO", Message: "keep me"},
		{Level: "DEBUG", Message: "drop me"},
	})

	cfg := replayConfig(objPath, outPath)
	cfg.Filters = []filter.Config{
		{Type: filter.TypeExclude, Patterns: []string{"DEBUG"}},
	}
	require.NoError(t, svc.NewPipeline(cfg))

	p, err := svc.GetPipeline("replay")
	require.NoError(t, err)
	p.Drain()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(outPath)
		return err == nil && bytes.Contains(data, []byte("keep me"))
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "drop me")

	stats := p.GetStats()
	assert.Equal(t, uint64(1), stats["total_filtered"])
}

func TestService_RateLimiterStatsExposed(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	writeObjectFile(t, objPath, []core.Record{{Message: "m"}})

	cfg := replayConfig(objPath, filepath.Join(dir, "out.log"))
	cfg.RateLimit = &flow.Config{Rate: 1000, Policy: "drop"}
	require.NoError(t, svc.NewPipeline(cfg))

	p, err := svc.GetPipeline("replay")
	require.NoError(t, err)
	p.Drain()

	rl, ok := p.GetStats()["rate_limiter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, rl["enabled"])
}

func TestService_BadSinkConfigFails(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	writeObjectFile(t, objPath, []core.Record{{Message: "m"}})

	cfg := replayConfig(objPath, filepath.Join(dir, "out.log"))
	cfg.Sinks = []config.SinkConfig{{Type: "file", Options: map[string]any{}}}
	assert.Error(t, svc.NewPipeline(cfg))
	assert.Empty(t, svc.ListPipelines())
}

func TestService_GlobalStats(t *testing.T) {
	svc := NewService(context.Background(), newTestLogger())
	defer svc.Shutdown()

	dir := t.TempDir()
	objPath := filepath.Join(dir, "records.obj")
	writeObjectFile(t, objPath, []core.Record{{Message: "m"}})

	require.NoError(t, svc.NewPipeline(replayConfig(objPath, filepath.Join(dir, "out.log"))))

	stats := svc.GetGlobalStats()
	assert.Equal(t, 1, stats["total_pipelines"])
	pipelines, ok := stats["pipelines"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, pipelines, "replay")
}
