package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Config holds pipeline configuration.
type Config struct {
	Decoder       detection.DecoderConfig
	IoUThreshold  float64
	Tracking      tracking.Config
	AlertCooldown time.Duration
}

// DefaultConfig returns production defaults for a 640x640 model.
func DefaultConfig() Config {
	return Config{
		Decoder:       detection.DefaultDecoderConfig(),
		IoUThreshold:  detection.DefaultIoUThreshold,
		Tracking:      tracking.DefaultConfig(),
		AlertCooldown: alert.DefaultCooldown,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Decoder.ModelWidth <= 0 || c.Decoder.ModelHeight <= 0 {
		errs = append(errs, fmt.Errorf("model size must be positive, got %dx%d", c.Decoder.ModelWidth, c.Decoder.ModelHeight))
	}
	if c.Decoder.ConfidenceThresh < 0 || c.Decoder.ConfidenceThresh > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold %v out of [0,1]", c.Decoder.ConfidenceThresh))
	}
	if c.Decoder.MinBoxPx < 0 {
		errs = append(errs, fmt.Errorf("min box %v must not be negative", c.Decoder.MinBoxPx))
	}
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		errs = append(errs, fmt.Errorf("iou threshold %v out of (0,1]", c.IoUThreshold))
	}
	if c.Tracking.GrowthThreshold < 0 || c.Tracking.AreaPercentThreshold < 0 {
		errs = append(errs, errors.New("tracking thresholds must not be negative"))
	}
	if c.Tracking.ModelWidth != c.Decoder.ModelWidth || c.Tracking.ModelHeight != c.Decoder.ModelHeight {
		errs = append(errs, errors.New("tracking and decoder model sizes differ"))
	}
	if c.AlertCooldown < 0 {
		errs = append(errs, errors.New("alert cooldown must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("pipeline: invalid config: %w", err)
	}
	return nil
}
