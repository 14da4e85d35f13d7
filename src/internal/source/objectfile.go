// FILE: logshed/src/internal/source/objectfile.go
package source

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

// Largest frame payload the reader accepts. Anything bigger is treated as a
// corrupt header rather than an allocation request.
const maxFrameSize = 16 * 1024 * 1024

// ObjectFileSource replays records from an object file written by the object
// sink: a sequence of big-endian uint32 length prefixes, each followed by one
// self-contained gob stream holding a single record. Frames are decoded with
// a fresh decoder so a corrupt frame stops the replay without poisoning
// earlier output.
type ObjectFileSource struct {
	path      string
	output    chan core.Record
	done      chan struct{}
	startTime time.Time
	logger    *log.Logger

	// Statistics
	totalRecords   atomic.Uint64
	droppedRecords atomic.Uint64
	lastRecordTime atomic.Value // time.Time
}

// NewObjectFileSource creates a replay source. Recognized options: "path"
// (string, required), "buffer_size".
func NewObjectFileSource(options map[string]any, logger *log.Logger) (*ObjectFileSource, error) {
	path, ok := options["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("object_file source requires 'path' option")
	}

	bufferSize := 1000
	if bufSize, ok := toInt(options["buffer_size"]); ok && bufSize > 0 {
		bufferSize = bufSize
	}

	s := &ObjectFileSource{
		path:      path,
		output:    make(chan core.Record, bufferSize),
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
	s.lastRecordTime.Store(time.Time{})

	return s, nil
}

func (s *ObjectFileSource) Subscribe() <-chan core.Record {
	return s.output
}

// Start opens the file and begins replaying frames. The output channel is
// closed once the file is exhausted, so downstream consumers see a finite
// stream.
func (s *ObjectFileSource) Start() error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open object file: %w", err)
	}

	s.logger.Info("msg", "Object file source started",
		"component", "object_file_source",
		"path", s.path)

	go s.readLoop(file)
	return nil
}

func (s *ObjectFileSource) Stop() {
	s.logger.Info("msg", "Stopping object file source", "path", s.path)
	close(s.done)
}

func (s *ObjectFileSource) GetStats() SourceStats {
	lastRecord, _ := s.lastRecordTime.Load().(time.Time)

	return SourceStats{
		Type:           "object_file",
		TotalRecords:   s.totalRecords.Load(),
		DroppedRecords: s.droppedRecords.Load(),
		StartTime:      s.startTime,
		LastRecordTime: lastRecord,
		Details: map[string]any{
			"path": s.path,
		},
	}
}

func (s *ObjectFileSource) readLoop(file *os.File) {
	defer close(s.output)
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		rec, err := readFrame(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.droppedRecords.Add(1)
				s.logger.Error("msg", "Failed to read object file frame",
					"component", "object_file_source",
					"path", s.path,
					"error", err)
			}
			return
		}

		s.totalRecords.Add(1)
		s.lastRecordTime.Store(time.Now())

		select {
		case s.output <- rec:
		case <-s.done:
			return
		}
	}
}

// readFrame decodes the next length-prefixed record. Returns io.EOF at a
// clean end of stream; a partial frame is reported as unexpected EOF.
func readFrame(r io.Reader) (core.Record, error) {
	var rec core.Record

	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return rec, fmt.Errorf("truncated frame header: %w", err)
		}
		return rec, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > maxFrameSize {
		return rec, fmt.Errorf("implausible frame length %d", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		// A bare EOF here still means a truncated frame, not a clean end.
		if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.ErrUnexpectedEOF
		}
		return rec, fmt.Errorf("truncated frame payload: %w", err)
	}

	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&rec); err != nil {
		return rec, fmt.Errorf("gob decode: %w", err)
	}
	return rec, nil
}
