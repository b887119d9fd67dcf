package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// StreamCapacity is the number of documents a stream buffers before Provide blocks.
const StreamCapacity = 10

// ErrStreamClosed is returned by Provide after Close.
var ErrStreamClosed = errors.New("stream closed")

// Stream feeds documents one at a time to a single consumer goroutine that
// analyzes and applies them. Provide blocks while the buffer is full.
type Stream struct {
	ID string

	ig   *Ingester
	docs chan Document
	done chan struct{}
	err  error

	closeMu sync.RWMutex
	closed  bool

	dropped  atomic.Int64
	recorded atomic.Int64
}

// Stream starts the consumer goroutine. ctx bounds the consumer: once it is
// done, remaining documents are discarded.
func (ig *Ingester) Stream(ctx context.Context) *Stream {
	s := &Stream{
		ID:   uuid.NewString(),
		ig:   ig,
		docs: make(chan Document, StreamCapacity),
		done: make(chan struct{}),
	}
	go s.consume(ctx)
	return s
}

func (s *Stream) consume(ctx context.Context) {
	defer close(s.done)
	index := 0
	for doc := range s.docs {
		if s.err != nil {
			// Keep draining so that producers never block on a dead stream.
			s.warn("stream %s: discarding document %s after error", s.ID, doc.ID)
			continue
		}
		if err := ctx.Err(); err != nil {
			s.err = err
			s.warn("stream %s: discarding document %s: %v", s.ID, doc.ID, err)
			continue
		}
		res := s.ig.analyze(index, doc)
		index++
		if res.Error != nil {
			s.err = res.Error
			continue
		}
		n, err := s.ig.apply(ctx, res)
		s.recorded.Add(int64(n))
		if err != nil {
			s.err = err
		}
	}
}

func (s *Stream) warn(format string, args ...any) {
	if s.ig.Logger != nil {
		s.ig.Logger.Printf(format, args...)
	}
}

// Provide hands a document to the stream, waiting for room in the buffer. If
// ctx is done first the document is dropped with a warning and the stream goes
// on; Provide then returns nil.
func (s *Stream) Provide(ctx context.Context, doc Document) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return ErrStreamClosed
	}
	select {
	case s.docs <- doc:
	case <-ctx.Done():
		s.dropped.Add(1)
		s.warn("Warning: stream %s: dropped document %s: %v", s.ID, doc.ID, ctx.Err())
	}
	return nil
}

// Close stops accepting documents. The consumer finishes the buffered ones.
func (s *Stream) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.docs)
}

// Wait blocks until the consumer has finished and returns its first error.
func (s *Stream) Wait() error {
	<-s.done
	return s.err
}

// Dropped is the number of documents dropped by cancelled Provide calls.
func (s *Stream) Dropped() int { return int(s.dropped.Load()) }

// Recorded is the number of occurrences recorded so far.
func (s *Stream) Recorded() int { return int(s.recorded.Load()) }
