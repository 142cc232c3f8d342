package config

import (
	"fmt"
	"strconv"

	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOTOSAAS_"

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

func envString(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func envFloat(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

func envInt(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = i
		return nil
	}
}

func envBool(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

var envVars = []envVar{
	{"LOG_LEVEL", envString(func(c *Config) *string { return &c.LogLevel })},

	{"MODEL_PATH", envString(func(c *Config) *string { return &c.Model.Path })},
	{"LABELS_PATH", envString(func(c *Config) *string { return &c.Model.LabelsPath })},
	{"MODEL_BACKEND", envString(func(c *Config) *string { return &c.Model.Backend })},

	{"CONFIDENCE_THRESHOLD", envFloat(func(c *Config) *float64 { return &c.Detection.ConfidenceThreshold })},
	{"IOU_THRESHOLD", envFloat(func(c *Config) *float64 { return &c.Detection.IoUThreshold })},
	{"MIN_BOX_PX", envFloat(func(c *Config) *float64 { return &c.Detection.MinBoxPx })},
	{"GROWTH_THRESHOLD", envFloat(func(c *Config) *float64 { return &c.Detection.GrowthThreshold })},
	{"AREA_PERCENT_THRESHOLD", envFloat(func(c *Config) *float64 { return &c.Detection.AreaPercentThreshold })},
	{"ALERT_COOLDOWN_MS", envInt(func(c *Config) *int { return &c.Detection.AlertCooldownMS })},

	{"CAMERA_DEVICE", envString(func(c *Config) *string { return &c.Camera.Device })},
	{"CAMERA_FACING", func(c *Config, v string) error {
		c.Camera.Facing = camera.Facing(v)
		return nil
	}},
	{"CAMERA_ROTATION", envInt(func(c *Config) *int { return &c.Camera.Rotation })},

	{"MQTT_ENABLED", envBool(func(c *Config) *bool { return &c.Alert.MQTT.Enabled })},
	{"MQTT_BROKER", envString(func(c *Config) *string { return &c.Alert.MQTT.Broker })},
	{"MQTT_TOPIC", envString(func(c *Config) *string { return &c.Alert.MQTT.Topic })},
	{"ALERT_WS_URL", envString(func(c *Config) *string { return &c.Alert.WSURL })},

	{"WEB_ENABLED", envBool(func(c *Config) *bool { return &c.Web.Enabled })},
	{"WEB_PORT", envString(func(c *Config) *string { return &c.Web.Port })},
}

// ApplyEnv overrides fields from MOTOSAAS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return fmt.Errorf("config: %s%s=%q: %w", EnvPrefix, ev.name, v, err)
		}
	}
	return nil
}
