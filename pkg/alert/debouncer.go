// Package alert turns per-frame approach state into show/hide signals for
// an external warning presenter.
package alert

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// DefaultCooldown is the minimum spacing between two show signals.
const DefaultCooldown = 1000 * time.Millisecond

// Signal is what the debouncer asks the presenter to do for a frame.
type Signal int

const (
	// SignalNone leaves the presenter as it is.
	SignalNone Signal = iota
	// SignalShow raises the warning.
	SignalShow
	// SignalHide clears the warning.
	SignalHide
)

// String returns the wire name of the signal.
func (s Signal) String() string {
	switch s {
	case SignalShow:
		return "show"
	case SignalHide:
		return "hide"
	default:
		return "none"
	}
}

// MarshalText encodes the signal by name.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Debouncer rate-limits the show edge of the proximity warning.
//
// Show fires at most once per cooldown window. Hide is not debounced: every
// frame without an approaching detection produces SignalHide. A frame that is
// approaching but still inside the cooldown produces SignalNone.
type Debouncer struct {
	cooldown time.Duration
	clock    clock.Clock

	mu       sync.Mutex
	lastShow time.Time
	hasShown bool
}

// NewDebouncer creates a debouncer. A nil clock uses the wall clock.
func NewDebouncer(cooldown time.Duration, clk clock.Clock) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		cooldown: cooldown,
		clock:    clk,
	}
}

// Observe decides the signal for one frame's tracked detections.
func (d *Debouncer) Observe(dets []detection.Detection) Signal {
	anyApproaching := lo.SomeBy(dets, func(det detection.Detection) bool {
		return det.Approaching
	})
	return d.ObserveAt(anyApproaching, d.clock.Now())
}

// ObserveAt decides the signal given the aggregate state and the frame time.
func (d *Debouncer) ObserveAt(anyApproaching bool, now time.Time) Signal {
	if !anyApproaching {
		return SignalHide
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hasShown && now.Sub(d.lastShow) <= d.cooldown {
		return SignalNone
	}
	d.lastShow = now
	d.hasShown = true
	return SignalShow
}

// Cooldown returns the configured cooldown.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// Reset forgets the last show time so the next approaching frame shows.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastShow = time.Time{}
	d.hasShown = false
}
