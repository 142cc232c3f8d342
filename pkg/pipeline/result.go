package pipeline

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Result is the outcome of one frame.
type Result struct {
	Session    uuid.UUID             `json:"session"`
	Seq        uint64                `json:"seq"`
	Detections []detection.Detection `json:"detections"`
	Signal     alert.Signal          `json:"signal"`

	// Coordinate space of Detections
	ModelWidth  int `json:"model_width"`
	ModelHeight int `json:"model_height"`

	// Upright capture size, zero when not known
	FrameSize image.Point `json:"-"`

	Latency time.Duration `json:"latency_ns"`
	Err     error         `json:"-"`
}

// Dropped reports whether the frame failed and produced no detections.
func (r Result) Dropped() bool {
	return r.Err != nil
}

// AnyApproaching reports whether any detection is approaching.
func (r Result) AnyApproaching() bool {
	return lo.SomeBy(r.Detections, func(d detection.Detection) bool { return d.Approaching })
}

// Approaching returns only the approaching detections.
func (r Result) Approaching() []detection.Detection {
	return lo.Filter(r.Detections, func(d detection.Detection, _ int) bool { return d.Approaching })
}

// Labels returns the distinct labels in this frame.
func (r Result) Labels() []string {
	return lo.Uniq(lo.Map(r.Detections, func(d detection.Detection, _ int) string { return d.Label }))
}

// Stats counts frames across the life of a pipeline.
type Stats struct {
	frames     atomic.Uint64
	dropped    atomic.Uint64
	detections atomic.Uint64
	shown      atomic.Uint64
	hidden     atomic.Uint64
	lastNanos  atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Frames       uint64        `json:"frames"`
	Dropped      uint64        `json:"dropped"`
	Detections   uint64        `json:"detections"`
	AlertsShown  uint64        `json:"alerts_shown"`
	AlertsHidden uint64        `json:"alerts_hidden"`
	LastLatency  time.Duration `json:"last_latency_ns"`
}

func (s *Stats) record(r Result) {
	s.frames.Add(1)
	if r.Dropped() {
		s.dropped.Add(1)
	}
	s.detections.Add(uint64(len(r.Detections)))
	switch r.Signal {
	case alert.SignalShow:
		s.shown.Add(1)
	case alert.SignalHide:
		s.hidden.Add(1)
	}
	s.lastNanos.Store(int64(r.Latency))
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Frames:       s.frames.Load(),
		Dropped:      s.dropped.Load(),
		Detections:   s.detections.Load(),
		AlertsShown:  s.shown.Load(),
		AlertsHidden: s.hidden.Load(),
		LastLatency:  time.Duration(s.lastNanos.Load()),
	}
}
