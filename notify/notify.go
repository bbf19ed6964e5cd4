package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notifier surfaces transient messages to the person driving the client
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier prints notifications through a zerolog logger
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info().Msg(message)
}

func (n *LogNotifier) Error(message string) {
	n.logger.Error().Msg(message)
}

type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// Recorder keeps every notification in memory
type Recorder struct {
	lock      sync.Mutex
	successes []string
	errors    []string
}

func (r *Recorder) Success(message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.successes = append(r.successes, message)
}

func (r *Recorder) Error(message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.errors = append(r.errors, message)
}

func (r *Recorder) Errors() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *Recorder) Successes() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.successes...)
}
