package pipeline

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking"
)

// State is the cross-frame memory of one pipeline: the tracker's id->area
// history and the alert debounce timestamp. Each reset starts a new session.
type State struct {
	tracker   *tracking.ProximityTracker
	debouncer *alert.Debouncer

	mu      sync.RWMutex
	session uuid.UUID
	closed  bool
}

// NewState creates fresh state.
func NewState(cfg Config, clk clock.Clock) *State {
	return &State{
		tracker:   tracking.NewProximityTracker(cfg.Tracking),
		debouncer: alert.NewDebouncer(cfg.AlertCooldown, clk),
		session:   uuid.New(),
	}
}

// Session identifies the span since creation or the last reset.
func (s *State) Session() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Tracker returns the proximity tracker.
func (s *State) Tracker() *tracking.ProximityTracker { return s.tracker }

// Debouncer returns the alert debouncer.
func (s *State) Debouncer() *alert.Debouncer { return s.debouncer }

// Reset clears tracking history and the alert timestamp.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset()
	s.debouncer.Reset()
	s.session = uuid.New()
}

// Close clears the state and marks it unusable.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.tracker.Reset()
	s.debouncer.Reset()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *State) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
