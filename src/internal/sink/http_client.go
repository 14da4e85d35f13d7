// FILE: logshed/src/internal/sink/http_client.go
package sink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"logshed/src/internal/core"
	"logshed/src/internal/format"
	"logshed/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// HTTPClientSink forwards formatted records to a remote ingest endpoint.
// Records are batched and posted as a concatenated blob stream; the
// formatter's record separator is the only framing, so receivers parse one
// record at a time. Failed batches are reported once and dropped, never
// retried.
type HTTPClientSink struct {
	name string

	// Configuration
	url         string
	batchSize   int
	batchDelay  time.Duration
	contentType string
	bearerToken string

	// Network
	client *fasthttp.Client

	// Application
	input     chan core.Record
	formatter format.Formatter
	logger    *log.Logger

	// Runtime
	done      chan struct{}
	wg        sync.WaitGroup
	startTime time.Time

	// Batching
	batch   [][]byte
	batchMu sync.Mutex

	// Statistics
	totalProcessed atomic.Uint64
	totalBatches   atomic.Uint64
	failedBatches  atomic.Uint64
	lastProcessed  atomic.Value // time.Time
	lastBatchSent  atomic.Value // time.Time
}

// NewHTTPClientSink creates a new HTTP client sink. Recognized options:
// "url" (string, required), "batch_size", "batch_delay_ms",
// "timeout_seconds", "buffer_size", "content_type", "bearer_token", "name".
func NewHTTPClientSink(options map[string]any, logger *log.Logger, formatter format.Formatter) (*HTTPClientSink, error) {
	url, ok := options["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("http_client sink requires 'url' option")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid url scheme: %s", url)
	}

	h := &HTTPClientSink{
		name:        sinkName(options, "http_client"),
		url:         url,
		batchSize:   100,
		batchDelay:  time.Second,
		contentType: "application/octet-stream",
		done:        make(chan struct{}),
		startTime:   time.Now(),
		logger:      logger,
		formatter:   formatter,
	}

	if batchSize, ok := toInt(options["batch_size"]); ok && batchSize > 0 {
		h.batchSize = batchSize
	}
	if delayMS, ok := toInt(options["batch_delay_ms"]); ok && delayMS > 0 {
		h.batchDelay = time.Duration(delayMS) * time.Millisecond
	}
	if contentType, ok := options["content_type"].(string); ok && contentType != "" {
		h.contentType = contentType
	}
	if token, ok := options["bearer_token"].(string); ok && token != "" {
		h.bearerToken = token
	}

	bufferSize := defaultInputBufferSize
	if bufSize, ok := toInt(options["buffer_size"]); ok && bufSize > 0 {
		bufferSize = bufSize
	}
	h.input = make(chan core.Record, bufferSize)
	h.batch = make([][]byte, 0, h.batchSize)

	timeout := 30 * time.Second
	if seconds, ok := toInt(options["timeout_seconds"]); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	h.client = &fasthttp.Client{
		Name:                getUserAgent(),
		MaxConnsPerHost:     10,
		MaxIdleConnDuration: 10 * time.Second,
		ReadTimeout:         timeout,
		WriteTimeout:        timeout,
	}

	h.lastProcessed.Store(time.Time{})
	h.lastBatchSent.Store(time.Time{})

	return h, nil
}

func getUserAgent() string {
	return "logshed/" + version.Short()
}

// Input returns the channel for sending records.
func (h *HTTPClientSink) Input() chan<- core.Record {
	return h.input
}

// Start begins the processing and batching loops.
func (h *HTTPClientSink) Start(ctx context.Context) error {
	h.wg.Add(2)
	go h.processLoop(ctx)
	go h.batchTimer(ctx)

	h.logger.Info("msg", "HTTP client sink started",
		"component", "http_client_sink",
		"name", h.name,
		"url", h.url,
		"batch_size", h.batchSize,
		"batch_delay_ms", h.batchDelay.Milliseconds())
	return nil
}

// Stop gracefully shuts down the sink, sending any remaining batched records.
func (h *HTTPClientSink) Stop() {
	h.logger.Info("msg", "Stopping HTTP client sink", "name", h.name)
	close(h.done)
	h.wg.Wait()

	h.flushBatch()

	h.logger.Info("msg", "HTTP client sink stopped", "name", h.name)
}

func (h *HTTPClientSink) GetStats() SinkStats {
	lastProc, _ := h.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "http_client",
		Name:           h.name,
		TotalProcessed: h.totalProcessed.Load(),
		TotalFailed:    h.failedBatches.Load(),
		StartTime:      h.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"url":           h.url,
			"total_batches": h.totalBatches.Load(),
		},
	}
}

func (h *HTTPClientSink) processLoop(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case rec, ok := <-h.input:
			if !ok {
				return
			}

			h.totalProcessed.Add(1)
			h.lastProcessed.Store(time.Now())

			formatted, err := h.formatter.Format(rec)
			if err != nil {
				h.logger.Error("msg", "Failed to format record",
					"component", "http_client_sink",
					"name", h.name,
					"error", err)
				continue
			}

			h.batchMu.Lock()
			h.batch = append(h.batch, formatted)
			full := len(h.batch) >= h.batchSize
			h.batchMu.Unlock()

			if full {
				h.flushBatch()
			}

		case <-ctx.Done():
			return
		case <-h.done:
			return
		}
	}
}

func (h *HTTPClientSink) batchTimer(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.batchDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.flushBatch()
		case <-ctx.Done():
			return
		case <-h.done:
			return
		}
	}
}

// flushBatch posts the pending batch as one request body.
func (h *HTTPClientSink) flushBatch() {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	pending := h.batch
	h.batch = make([][]byte, 0, h.batchSize)
	h.batchMu.Unlock()

	var body []byte
	for _, blob := range pending {
		body = append(body, blob...)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(h.contentType)
	if h.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.bearerToken)
	}
	req.SetBody(body)

	h.totalBatches.Add(1)

	if err := h.client.Do(req, resp); err != nil {
		h.failedBatches.Add(1)
		h.logger.Error("msg", "Failed to send batch",
			"component", "http_client_sink",
			"name", h.name,
			"url", h.url,
			"records", len(pending),
			"error", err)
		return
	}

	if resp.StatusCode() >= 400 {
		h.failedBatches.Add(1)
		h.logger.Error("msg", "Remote endpoint rejected batch",
			"component", "http_client_sink",
			"name", h.name,
			"url", h.url,
			"status", resp.StatusCode(),
			"records", len(pending))
		return
	}

	h.lastBatchSent.Store(time.Now())
}
