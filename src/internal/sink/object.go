// FILE: logshed/src/internal/sink/object.go
package sink

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	objectScratchSize  = 1024
	objectScratchLimit = 64 * 1024
)

// ObjectSink writes records to a file as gob-encoded frames instead of
// formatted text. Each frame is a big-endian uint32 payload length followed
// by one gob stream holding exactly one record. A fresh encoder per frame
// keeps every frame self-contained and bounds encoder state between writes;
// readers decode frames independently (see source.ObjectFileSource).
type ObjectSink struct {
	name      string
	path      string
	file      *os.File
	scratch   *bytes.Buffer
	input     chan core.Record
	done      chan struct{}
	startTime time.Time
	logger    *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalFailed    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewObjectSink creates a new object file sink and opens its file.
// Recognized options: "path" (string, required), "append" (bool, default
// true; false truncates on open), "name", "buffer_size".
func NewObjectSink(options map[string]any, logger *log.Logger) (*ObjectSink, error) {
	path, ok := options["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("object sink requires 'path' option")
	}

	appendMode := true
	if v, ok := options["append"].(bool); ok {
		appendMode = v
	}

	file, err := openObjectFile(path, appendMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open object file: %w", err)
	}

	bufferSize := defaultInputBufferSize
	if bufSize, ok := toInt(options["buffer_size"]); ok && bufSize > 0 {
		bufferSize = bufSize
	}

	sk := &ObjectSink{
		name:      sinkName(options, "object"),
		path:      path,
		file:      file,
		scratch:   bytes.NewBuffer(make([]byte, 0, objectScratchSize)),
		input:     make(chan core.Record, bufferSize),
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
	sk.lastProcessed.Store(time.Time{})

	return sk, nil
}

// openObjectFile opens the destination, creating missing parent directories
// before giving up.
func openObjectFile(path string, appendMode bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err == nil {
		return file, nil
	}

	parent := filepath.Dir(path)
	if parent == "." || parent == string(filepath.Separator) {
		return nil, err
	}
	if mkErr := os.MkdirAll(parent, 0755); mkErr != nil {
		return nil, err
	}
	return os.OpenFile(path, flags, 0644)
}

func (s *ObjectSink) Input() chan<- core.Record {
	return s.input
}

func (s *ObjectSink) Start(ctx context.Context) error {
	go s.processLoop(ctx)
	s.logger.Info("msg", "Object sink started",
		"component", "object_sink",
		"name", s.name,
		"path", s.path)
	return nil
}

func (s *ObjectSink) Stop() {
	s.logger.Info("msg", "Stopping object sink", "name", s.name)
	close(s.done)

	if err := s.file.Close(); err != nil {
		// Too late for anything but a report.
		s.logger.Error("msg", "Could not close object file",
			"component", "object_sink",
			"name", s.name,
			"error", err)
	}

	s.logger.Info("msg", "Object sink stopped", "name", s.name)
}

func (s *ObjectSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "object",
		Name:           s.name,
		TotalProcessed: s.totalProcessed.Load(),
		TotalFailed:    s.totalFailed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"path": s.path,
		},
	}
}

func (s *ObjectSink) processLoop(ctx context.Context) {
	for {
		select {
		case rec, ok := <-s.input:
			if !ok {
				return
			}

			s.totalProcessed.Add(1)
			s.lastProcessed.Store(time.Now())

			if err := s.writeRecord(rec); err != nil {
				s.totalFailed.Add(1)
				s.logger.Error("msg", "Cannot write to object file set for the sink",
					"component", "object_sink",
					"name", s.name,
					"error", err)
			}

		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// writeRecord encodes one record into the scratch buffer and appends the
// framed payload to the file. The scratch buffer is reused across writes and
// replaced when an oversized record grew it past the retention limit.
func (s *ObjectSink) writeRecord(rec core.Record) error {
	if s.scratch.Cap() > objectScratchLimit {
		s.scratch = bytes.NewBuffer(make([]byte, 0, objectScratchSize))
	} else {
		s.scratch.Reset()
	}

	var header [4]byte
	s.scratch.Write(header[:]) // reserve the length prefix

	if err := gob.NewEncoder(s.scratch).Encode(rec); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	frame := s.scratch.Bytes()
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)-4))

	if _, err := s.file.Write(frame); err != nil {
		return err
	}
	return nil
}
