package diag

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailure        Outcome = "failure"
	OutcomeRefresh        Outcome = "refresh"
	OutcomeRefreshFailed  Outcome = "refresh_failed"
	OutcomeSessionExpired Outcome = "session_expired"
)

// Event is one diagnostic record mirrored from the request wrapper
type Event struct {
	RequestID string
	Method    string
	Path      string
	Mode      string
	Status    int
	Outcome   Outcome
	Message   string
	Attempt   int
	Duration  time.Duration
}

// Sink receives diagnostic events. Record must never block the caller.
type Sink interface {
	Record(Event)
}

type Nop struct{}

func (Nop) Record(Event) {}

// AsyncSink writes events to a zerolog logger from a background goroutine.
// When the buffer is full events are dropped and counted.
// Events recorded after Close are dropped.
type AsyncSink struct {
	logger  zerolog.Logger
	events  chan Event
	dropped atomic.Int64
	done    chan struct{}
	lock    sync.RWMutex
	closed  bool
}

func NewAsyncSink(logger zerolog.Logger, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncSink{
		logger: logger,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *AsyncSink) Record(e Event) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.events <- e:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded, either on a full buffer or after Close
func (s *AsyncSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close flushes buffered events and stops the writer
func (s *AsyncSink) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.lock.Unlock()
	<-s.done
}

func (s *AsyncSink) drain() {
	defer close(s.done)
	for e := range s.events {
		level := zerolog.DebugLevel
		if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeRefresh {
			level = zerolog.WarnLevel
		}
		s.logger.WithLevel(level).
			Str("request_id", e.RequestID).
			Str("method", e.Method).
			Str("path", e.Path).
			Str("mode", e.Mode).
			Int("status", e.Status).
			Str("outcome", string(e.Outcome)).
			Int("attempt", e.Attempt).
			Dur("duration", e.Duration).
			Msg(e.Message)
	}
}

// Memory collects events synchronously
type Memory struct {
	lock   sync.Mutex
	events []Event
}

func (m *Memory) Record(e Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.events = append(m.events, e)
}

func (m *Memory) Events() []Event {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Event(nil), m.events...)
}
