package detection

import (
	"hash/fnv"
	"log/slog"
)

// UnknownLabel is used when a class index has no entry in the label list.
const UnknownLabel = "Unknown"

// DecoderConfig holds decoder configuration.
type DecoderConfig struct {
	ModelWidth       int      // Model input width in pixels
	ModelHeight      int      // Model input height in pixels
	ConfidenceThresh float64  // Boxes scoring below this are dropped
	MinBoxPx         float64  // Boxes narrower or shorter than this are dropped
	Mirror           bool     // Flip x for front-facing cameras
	Labels           []string // Class names, index = class id
}

// DefaultDecoderConfig returns production defaults for a 640x640 model.
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		ModelWidth:       640,
		ModelHeight:      640,
		ConfidenceThresh: 0.6,
		MinBoxPx:         8,
	}
}

// Decoder turns raw model output into candidate detections.
// It holds no state between calls.
type Decoder struct {
	config DecoderConfig
	logger *slog.Logger
}

// NewDecoder creates a decoder.
func NewDecoder(cfg DecoderConfig) *Decoder {
	return &Decoder{
		config: cfg,
		logger: slog.Default().With("component", "detection.decoder"),
	}
}

// Config returns the decoder configuration.
func (d *Decoder) Config() DecoderConfig {
	return d.config
}

// Decode parses a [1][4+numClasses][numBoxes] tensor.
// Degenerate, undersized and low-confidence boxes are dropped silently.
func (d *Decoder) Decode(t Tensor) ([]Detection, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	modelW := float64(d.config.ModelWidth)
	modelH := float64(d.config.ModelHeight)
	numBoxes := t.Boxes()
	numClasses := t.Channels() - 4

	var detections []Detection
	for i := 0; i < numBoxes; i++ {
		// Box geometry comes normalized to the model input
		cx := float64(t.at(0, i)) * modelW
		cy := float64(t.at(1, i)) * modelH
		w := float64(t.at(2, i)) * modelW
		h := float64(t.at(3, i)) * modelH

		if w <= 0 || h <= 0 {
			continue
		}
		if w < d.config.MinBoxPx || h < d.config.MinBoxPx {
			continue
		}

		maxScore := t.at(4, i)
		classID := 0
		for c := 1; c < numClasses; c++ {
			if score := t.at(4+c, i); score > maxScore {
				maxScore = score
				classID = c
			}
		}

		if float64(maxScore) < d.config.ConfidenceThresh {
			continue
		}

		label := d.label(classID)
		reportedX := cx
		if d.config.Mirror {
			reportedX = modelW - cx
		}

		detections = append(detections, Detection{
			ID:         DeriveID(label, cx, cy),
			CenterX:    reportedX,
			CenterY:    cy,
			Width:      w,
			Height:     h,
			Label:      label,
			Confidence: float64(maxScore),
		})
	}

	if len(detections) > 0 {
		d.logger.Debug("decoded candidates", "boxes", numBoxes, "kept", len(detections))
	}
	return detections, nil
}

func (d *Decoder) label(classID int) string {
	if classID < len(d.config.Labels) {
		return d.config.Labels[classID]
	}
	return UnknownLabel
}

// DeriveID hashes a label and a center quantized to whole pixels.
//
// This is not a tracker: an object that moves gets a new id, and two objects
// of the same class at the same position share one.
func DeriveID(label string, cx, cy float64) int {
	h := fnv.New32a()
	h.Write([]byte(label))
	id := h.Sum32() + uint32(int32(cx))*31 + uint32(int32(cy))*17
	return int(int32(id))
}
