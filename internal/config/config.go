// Package config loads motoSaaS configuration from YAML, the environment
// and an optional .env file.
//
// Precedence, lowest first: built-in defaults, the YAML file, the tracking
// preset, MOTOSAAS_* environment variables. Command-line flags are applied
// by the caller on top.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JuzJuJazzy/motoSaaS/pkg/alert"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
	"github.com/JuzJuJazzy/motoSaaS/pkg/pipeline"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking"
	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level"`

	Model     ModelConfig     `yaml:"model" json:"model"`
	Detection DetectionConfig `yaml:"detection" json:"detection"`
	Tracking  TrackingConfig  `yaml:"tracking" json:"tracking"`
	Camera    camera.Config   `yaml:"camera" json:"camera"`
	Alert     AlertConfig     `yaml:"alert" json:"alert"`
	Web       WebConfig       `yaml:"web" json:"web"`
}

// ModelConfig locates the detection model and its labels.
type ModelConfig struct {
	Path       string   `yaml:"path" json:"path"`
	LabelsPath string   `yaml:"labels_path" json:"labels_path"`
	Labels     []string `yaml:"labels" json:"labels"` // Used when labels_path is empty
	Width      int      `yaml:"width" json:"width"`
	Height     int      `yaml:"height" json:"height"`
	Backend    string   `yaml:"backend" json:"backend"` // cpu, cuda
}

// DetectionConfig holds the per-frame thresholds.
type DetectionConfig struct {
	ConfidenceThreshold  float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
	IoUThreshold         float64 `yaml:"iou_threshold" json:"iou_threshold"`
	MinBoxPx             float64 `yaml:"min_box_px" json:"min_box_px"`
	GrowthThreshold      float64 `yaml:"growth_threshold" json:"growth_threshold"`
	AreaPercentThreshold float64 `yaml:"area_percent_threshold" json:"area_percent_threshold"`
	AlertCooldownMS      int     `yaml:"alert_cooldown_ms" json:"alert_cooldown_ms"`
}

// TrackingConfig bounds the tracker's memory.
type TrackingConfig struct {
	Preset      string `yaml:"preset" json:"preset"` // default, sensitive, relaxed
	MaxEntries  int    `yaml:"max_entries" json:"max_entries"`
	StaleFrames int    `yaml:"stale_frames" json:"stale_frames"`
}

// AlertConfig selects where alerts are presented besides the log.
type AlertConfig struct {
	MQTT  MQTTConfig `yaml:"mqtt" json:"mqtt"`
	WSURL string     `yaml:"ws_url" json:"ws_url"`
}

// MQTTConfig configures the MQTT presenter.
type MQTTConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Broker    string `yaml:"broker" json:"broker"`
	ClientID  string `yaml:"client_id" json:"client_id"`
	Topic     string `yaml:"topic" json:"topic"`
	QoS       byte   `yaml:"qos" json:"qos"`
	Retained  bool   `yaml:"retained" json:"retained"`
	TimeoutMS int    `yaml:"timeout_ms" json:"timeout_ms"`
}

// WebConfig configures the dashboard.
type WebConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Port       string `yaml:"port" json:"port"`
	StaticDir  string `yaml:"static_dir" json:"static_dir"`
	ViewWidth  int    `yaml:"view_width" json:"view_width"`
	ViewHeight int    `yaml:"view_height" json:"view_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	dec := detection.DefaultDecoderConfig()
	trk := tracking.DefaultConfig()
	mqtt := alert.DefaultMQTTConfig()

	return Config{
		LogLevel: "info",
		Model: ModelConfig{
			Path:    "models/detector.onnx",
			Width:   dec.ModelWidth,
			Height:  dec.ModelHeight,
			Backend: "cpu",
		},
		Detection: DetectionConfig{
			ConfidenceThreshold:  dec.ConfidenceThresh,
			IoUThreshold:         detection.DefaultIoUThreshold,
			MinBoxPx:             dec.MinBoxPx,
			GrowthThreshold:      trk.GrowthThreshold,
			AreaPercentThreshold: trk.AreaPercentThreshold,
			AlertCooldownMS:      int(alert.DefaultCooldown / time.Millisecond),
		},
		Tracking: TrackingConfig{
			MaxEntries:  trk.MaxEntries,
			StaleFrames: trk.StaleFrames,
		},
		Camera: camera.DefaultConfig(),
		Alert: AlertConfig{
			MQTT: MQTTConfig{
				Broker:    mqtt.Broker,
				ClientID:  mqtt.ClientID,
				Topic:     mqtt.Topic,
				QoS:       mqtt.QoS,
				Retained:  mqtt.Retained,
				TimeoutMS: int(mqtt.Timeout / time.Millisecond),
			},
		},
		Web: WebConfig{
			Enabled: true,
			Port:    "8080",
		},
	}
}

// Load reads path over the defaults, applies the tracking preset and then
// the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyPreset(); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyPreset() error {
	if c.Tracking.Preset == "" {
		return nil
	}
	preset, ok := tracking.Presets()[c.Tracking.Preset]
	if !ok {
		return fmt.Errorf("config: unknown tracking preset %q", c.Tracking.Preset)
	}
	c.Detection.GrowthThreshold = preset.GrowthThreshold
	c.Detection.AreaPercentThreshold = preset.AreaPercentThreshold
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q must be debug, info, warn or error", c.LogLevel))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	if c.Model.Backend != "cpu" && c.Model.Backend != "cuda" {
		errs = append(errs, fmt.Errorf("model.backend %q must be cpu or cuda", c.Model.Backend))
	}
	if c.Detection.AlertCooldownMS < 0 {
		errs = append(errs, errors.New("detection.alert_cooldown_ms must not be negative"))
	}
	if camErrs := c.Camera.Validate(); len(camErrs) > 0 {
		errs = append(errs, fmt.Errorf("camera: %s", strings.Join(camErrs, "; ")))
	}
	if c.Alert.MQTT.Enabled && c.Alert.MQTT.Broker == "" {
		errs = append(errs, errors.New("alert.mqtt.broker is required when mqtt is enabled"))
	}
	if c.Alert.MQTT.QoS > 2 {
		errs = append(errs, errors.New("alert.mqtt.qos must be 0, 1 or 2"))
	}
	if c.Web.Enabled && c.Web.Port == "" {
		errs = append(errs, errors.New("web.port is required when web is enabled"))
	}

	if err := c.Pipeline().Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// Pipeline builds the pipeline configuration. Labels are taken from
// Model.Labels; call ResolveLabels first when using a labels file.
func (c Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		Decoder: detection.DecoderConfig{
			ModelWidth:       c.Model.Width,
			ModelHeight:      c.Model.Height,
			ConfidenceThresh: c.Detection.ConfidenceThreshold,
			MinBoxPx:         c.Detection.MinBoxPx,
			Mirror:           c.Camera.Mirrored(),
			Labels:           c.Model.Labels,
		},
		IoUThreshold: c.Detection.IoUThreshold,
		Tracking: tracking.Config{
			GrowthThreshold:      c.Detection.GrowthThreshold,
			AreaPercentThreshold: c.Detection.AreaPercentThreshold,
			ModelWidth:           c.Model.Width,
			ModelHeight:          c.Model.Height,
			MaxEntries:           c.Tracking.MaxEntries,
			StaleFrames:          c.Tracking.StaleFrames,
		},
		AlertCooldown: time.Duration(c.Detection.AlertCooldownMS) * time.Millisecond,
	}
}

// MQTT builds the MQTT presenter configuration.
func (c Config) MQTT() alert.MQTTConfig {
	return alert.MQTTConfig{
		Broker:   c.Alert.MQTT.Broker,
		ClientID: c.Alert.MQTT.ClientID,
		Topic:    c.Alert.MQTT.Topic,
		QoS:      c.Alert.MQTT.QoS,
		Retained: c.Alert.MQTT.Retained,
		Timeout:  time.Duration(c.Alert.MQTT.TimeoutMS) * time.Millisecond,
	}
}

// ResolveLabels loads Model.LabelsPath into Model.Labels when set.
func (c *Config) ResolveLabels() error {
	if c.Model.LabelsPath == "" {
		return nil
	}
	labels, err := LoadLabels(c.Model.LabelsPath)
	if err != nil {
		return err
	}
	c.Model.Labels = labels
	return nil
}

// LoadLabels reads one class name per line. Blank lines and lines starting
// with # are skipped; line order is class id order.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("config: no labels in %s", path)
	}
	return labels, nil
}
