// Package display provides the single status target every request handler
// reports to. The sink carries the continuation state, an advisory flag telling
// sequenced work whether it may keep going, together with the last message shown
// to the user.
package display

import (
	"sync"

	"loathing_assistant/internal/pkg/logger"

	"go.uber.org/zap"
)

// State is the continuation state carried by the sink.
type State int

const (
	// Continue permits sequenced work to proceed.
	Continue State = iota
	// Disabled marks an operation in progress; the UI greys out its controls.
	Disabled
	// Enabled marks a finished operation, including user-recoverable failures.
	Enabled
	// Error halts the current request sequence.
	Error
	// Abort halts the current request sequence and everything queued behind it.
	Abort
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case Continue:
		return "CONTINUE"
	case Disabled:
		return "DISABLED_STATE"
	case Enabled:
		return "ENABLED_STATE"
	case Error:
		return "ERROR"
	case Abort:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}

// Halting reports whether the state stops sibling requests in a sequence.
func (s State) Halting() bool {
	return s == Error || s == Abort
}

// Update is one display line together with the state it was written with.
type Update struct {
	State   State  `json:"state"`
	Message string `json:"message"`
}

// Sink is the process-wide display target of a session.
//
// Error and Abort are sticky: once set, only another halting state or
// ForceContinue replaces them. Abort is only replaced by ForceContinue.
type Sink struct {
	mu          sync.Mutex
	current     Update
	held        int
	pending     *Update
	subscribers []chan Update
	log         *logger.Logger
}

// NewSink creates a sink in the Continue state.
func NewSink(l *logger.Logger) *Sink {
	if l == nil {
		l = logger.Nop()
	}
	return &Sink{log: l}
}

// Update writes message with state.
func (s *Sink) Update(state State, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := state
	switch {
	case s.current.State == Abort && state != Abort:
		next = Abort
	case s.current.State == Error && !state.Halting():
		next = Error
	}
	s.current = Update{State: next, Message: message}

	s.log.Debug("display", zap.String("state", next.String()), zap.String("message", message))

	if s.held > 0 {
		u := s.current
		s.pending = &u
		return
	}
	s.publishLocked(s.current)
}

// Message writes message with the Continue state.
func (s *Sink) Message(message string) {
	s.Update(Continue, message)
}

// Current returns the state and last message.
func (s *Sink) Current() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// State returns the current continuation state.
func (s *Sink) State() State {
	return s.Current().State
}

// LastMessage returns the last message written.
func (s *Sink) LastMessage() string {
	return s.Current().Message
}

// ForceContinue resets the state to Continue, keeping the last message.
func (s *Sink) ForceContinue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.State = Continue
	if s.held > 0 {
		u := s.current
		s.pending = &u
		return
	}
	s.publishLocked(s.current)
}

// Hold starts coalescing: until the matching Release, subscribers only
// receive the last update written.
func (s *Sink) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held++
}

// Release ends one Hold. When the last hold is released the terminal update
// written while held, if any, is delivered.
func (s *Sink) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == 0 {
		return
	}
	s.held--
	if s.held == 0 && s.pending != nil {
		s.publishLocked(*s.pending)
		s.pending = nil
	}
}

// Subscribe returns a channel that always holds the most recent update not
// yet received. Slow readers skip intermediate updates, never the latest one.
func (s *Sink) Subscribe() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Sink) publishLocked(u Update) {
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- u
	}
}
