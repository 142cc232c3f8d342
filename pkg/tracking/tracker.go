// Package tracking classifies detections as approaching the camera by
// following each detection id's box area from frame to frame.
package tracking

import (
	"log/slog"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// unseenArea marks an id with no usable prior observation.
const unseenArea = -1.0

// entry is the per-id state kept between frames.
type entry struct {
	lastArea float64
	lastSeen uint64 // frame counter at last sighting
}

// ProximityTracker remembers the last box area per detection id and flags
// detections that grew quickly or already fill a large part of the frame.
//
// Memory is bounded two ways: the least recently seen ids are evicted once
// MaxEntries is reached, and ids unseen for StaleFrames frames are treated as
// new on their next sighting.
type ProximityTracker struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	entries *lru.Cache
	frame   uint64
}

// NewProximityTracker creates a tracker with empty history.
func NewProximityTracker(config Config) *ProximityTracker {
	return &ProximityTracker{
		config:  config,
		logger:  slog.Default().With("component", "tracking.proximity"),
		entries: lru.New(config.MaxEntries),
	}
}

// Config returns the tracker configuration.
func (t *ProximityTracker) Config() Config {
	return t.config
}

// Track classifies one frame's detections and records their areas.
// It returns copies with Approaching set; the input is left untouched.
// Call it exactly once per frame.
func (t *ProximityTracker) Track(dets []detection.Detection) []detection.Detection {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frame++
	out := make([]detection.Detection, len(dets))

	for i, d := range dets {
		area := d.Area()
		lastArea := t.lastAreaLocked(d.ID)

		growth := 0.0
		if lastArea > 0 {
			growth = (area - lastArea) / lastArea
		}
		expandedFast := growth > t.config.GrowthThreshold

		areaPercent := area / t.config.frameArea()
		biggerThanLimit := areaPercent > t.config.AreaPercentThreshold

		d.Approaching = expandedFast || biggerThanLimit
		out[i] = d

		// Always record, first sighting included, to set the baseline.
		t.entries.Add(d.ID, &entry{lastArea: area, lastSeen: t.frame})

		t.logger.Debug("proximity",
			"id", d.ID,
			"label", d.Label,
			"area", area,
			"last_area", lastArea,
			"growth", growth,
			"area_percent", areaPercent,
			"approaching", d.Approaching,
		)
	}

	return out
}

// lastAreaLocked returns the recorded area for id, or unseenArea.
// Stale entries are dropped here.
func (t *ProximityTracker) lastAreaLocked(id int) float64 {
	v, ok := t.entries.Get(id)
	if !ok {
		return unseenArea
	}
	e := v.(*entry)
	if t.config.StaleFrames > 0 && t.frame-e.lastSeen > uint64(t.config.StaleFrames) {
		t.entries.Remove(id)
		return unseenArea
	}
	return e.lastArea
}

// LastArea returns the last recorded area for id.
func (t *ProximityTracker) LastArea(id int) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.entries.Get(id)
	if !ok {
		return 0, false
	}
	return v.(*entry).lastArea, true
}

// Len returns the number of remembered ids.
func (t *ProximityTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Len()
}

// Frames returns how many frames have been tracked since the last reset.
func (t *ProximityTracker) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// Reset forgets all history.
func (t *ProximityTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries.Clear()
	t.frame = 0
}
