// FILE: logshed/src/internal/service/pipeline.go
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logshed/src/internal/config"
	"logshed/src/internal/filter"
	"logshed/src/internal/flow"
	"logshed/src/internal/format"
	"logshed/src/internal/sink"
	"logshed/src/internal/source"

	"github.com/lixenwraith/log"
)

// Pipeline manages the flow of records from sources through the rate
// limiter and filters to sinks.
type Pipeline struct {
	Config      *config.PipelineConfig
	Sources     []source.Source
	RateLimiter *flow.RateLimiter
	FilterChain *filter.Chain
	Sinks       []sink.Sink
	Stats       *PipelineStats
	logger      *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// PipelineStats contains statistics for a pipeline
type PipelineStats struct {
	StartTime                      time.Time
	TotalRecordsProcessed          atomic.Uint64
	TotalRecordsDroppedByRateLimit atomic.Uint64
	TotalRecordsFiltered           atomic.Uint64
}

// NewPipeline creates and starts a new pipeline.
func (s *Service) NewPipeline(cfg *config.PipelineConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pipelines[cfg.Name]; exists {
		err := fmt.Errorf("pipeline '%s' already exists", cfg.Name)
		s.logger.Error("msg", "Failed to create pipeline - duplicate name",
			"component", "service",
			"pipeline", cfg.Name,
			"error", err)
		return err
	}

	s.logger.Debug("msg", "Creating pipeline", "pipeline", cfg.Name)

	pipelineCtx, pipelineCancel := context.WithCancel(s.ctx)

	pipeline := &Pipeline{
		Config: cfg,
		Stats: &PipelineStats{
			StartTime: time.Now(),
		},
		ctx:    pipelineCtx,
		cancel: pipelineCancel,
		logger: s.logger,
	}

	// Create sources
	for i, srcCfg := range cfg.Sources {
		src, err := source.New(srcCfg.Type, srcCfg.Options, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create source[%d]: %w", i, err)
		}
		pipeline.Sources = append(pipeline.Sources, src)
	}

	// Create pipeline rate limiter
	if cfg.RateLimit != nil {
		limiter, err := flow.NewRateLimiter(*cfg.RateLimit, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create pipeline rate limiter: %w", err)
		}
		pipeline.RateLimiter = limiter
	}

	// Create filter chain
	if len(cfg.Filters) > 0 {
		chain, err := filter.NewChain(cfg.Filters, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create filter chain: %w", err)
		}
		pipeline.FilterChain = chain
	}

	// Create sinks. Each sink gets its own formatter instance since
	// formatters carry per-call scratch state.
	for i, sinkCfg := range cfg.Sinks {
		formatter, err := format.New(cfg.Format.Name, cfg.Format.Options, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create formatter for sink[%d]: %w", i, err)
		}
		sinkInst, err := sink.New(sinkCfg.Type, sinkCfg.Options, s.logger, formatter)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create sink[%d]: %w", i, err)
		}
		pipeline.Sinks = append(pipeline.Sinks, sinkInst)
	}

	// Start all sinks first so records flowing from finite sources
	// have somewhere to go.
	for i, sinkInst := range pipeline.Sinks {
		if err := sinkInst.Start(pipelineCtx); err != nil {
			pipeline.Shutdown()
			return fmt.Errorf("failed to start sink[%d]: %w", i, err)
		}
	}

	// Wire sources to sinks through filters before starting the sources,
	// object file replay begins emitting immediately on Start.
	s.wirePipeline(pipeline)

	// Start all sources
	for i, src := range pipeline.Sources {
		if err := src.Start(); err != nil {
			pipeline.Shutdown()
			return fmt.Errorf("failed to start source[%d]: %w", i, err)
		}
	}

	s.pipelines[cfg.Name] = pipeline
	s.logger.Info("msg", "Pipeline created successfully",
		"pipeline", cfg.Name)
	return nil
}

// Shutdown gracefully stops the pipeline.
func (p *Pipeline) Shutdown() {
	p.logger.Info("msg", "Shutting down pipeline",
		"component", "pipeline",
		"pipeline", p.Config.Name)

	// Stop sources first so no new records enter the pipeline
	var wg sync.WaitGroup
	for _, src := range p.Sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			src.Stop()
		}(src)
	}
	wg.Wait()

	// Cancel context to stop processing goroutines
	p.cancel()
	p.wg.Wait()

	// Stop all sinks, flushing what they have buffered
	for _, s := range p.Sinks {
		wg.Add(1)
		go func(sk sink.Sink) {
			defer wg.Done()
			sk.Stop()
		}(s)
	}
	wg.Wait()

	p.logger.Info("msg", "Pipeline shutdown complete",
		"component", "pipeline",
		"pipeline", p.Config.Name)
}

// Drain waits until every source channel has been fully consumed and the
// processing goroutines have exited. Used for finite sources like object
// file replay, where the caller wants to exit after the file is spent.
func (p *Pipeline) Drain() {
	p.wg.Wait()
}

// GetStats returns pipeline statistics.
func (p *Pipeline) GetStats() map[string]any {
	// Recovery to handle concurrent access during shutdown, sources and
	// sinks may be partially stopped
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("msg", "Panic getting pipeline stats",
				"pipeline", p.Config.Name,
				"panic", r)
		}
	}()

	sourceStats := make([]map[string]any, 0, len(p.Sources))
	for _, src := range p.Sources {
		if src == nil {
			continue
		}

		stats := src.GetStats()
		sourceStats = append(sourceStats, map[string]any{
			"type":             stats.Type,
			"total_records":    stats.TotalRecords,
			"dropped_records":  stats.DroppedRecords,
			"start_time":       stats.StartTime,
			"last_record_time": stats.LastRecordTime,
			"details":          stats.Details,
		})
	}

	var filterStats map[string]any
	if p.FilterChain != nil {
		filterStats = p.FilterChain.GetStats()
	}

	sinkStats := make([]map[string]any, 0, len(p.Sinks))
	for _, s := range p.Sinks {
		if s == nil {
			continue
		}

		stats := s.GetStats()
		sinkStats = append(sinkStats, map[string]any{
			"type":            stats.Type,
			"name":            stats.Name,
			"total_processed": stats.TotalProcessed,
			"total_failed":    stats.TotalFailed,
			"start_time":      stats.StartTime,
			"last_processed":  stats.LastProcessed,
			"details":         stats.Details,
		})
	}

	return map[string]any{
		"name":                     p.Config.Name,
		"uptime_seconds":           int(time.Since(p.Stats.StartTime).Seconds()),
		"total_processed":          p.Stats.TotalRecordsProcessed.Load(),
		"total_dropped_rate_limit": p.Stats.TotalRecordsDroppedByRateLimit.Load(),
		"total_filtered":           p.Stats.TotalRecordsFiltered.Load(),
		"sources":                  sourceStats,
		"rate_limiter":             p.RateLimiter.GetStats(),
		"sinks":                    sinkStats,
		"filters":                  filterStats,
		"source_count":             len(p.Sources),
		"sink_count":               len(p.Sinks),
		"filter_count":             len(p.Config.Filters),
	}
}
