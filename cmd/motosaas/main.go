// motoSaaS watches a camera for approaching objects and raises a
// debounced proximity warning.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JuzJuJazzy/motoSaaS/internal/config"
	"github.com/JuzJuJazzy/motoSaaS/internal/log"
	"github.com/JuzJuJazzy/motoSaaS/pkg/camera"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	log.Init(cfg.LogLevel)
	logger := log.Component("main")

	a, err := newApp(cfg)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("runtime error", "error", err)
		a.Shutdown()
		os.Exit(1)
	}
}

// loadConfig reads .env, the YAML file and the environment, then applies
// command line flags on top.
func loadConfig() (config.Config, error) {
	configPath := flag.String("config", os.Getenv("MOTOSAAS_CONFIG"), "Path to YAML config file")
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	model := flag.String("model", "", "Path to ONNX detection model")
	labels := flag.String("labels", "", "Path to labels file, one class per line")
	device := flag.String("device", "", "Camera index or video file/stream URL")
	facing := flag.String("facing", "", "Camera facing: front or back")
	rotation := flag.Int("rotation", -1, "Clockwise frame rotation: 0, 90, 180, 270")
	port := flag.String("port", "", "Dashboard port")
	noWeb := flag.Bool("no-web", false, "Disable the web dashboard")
	mqttBroker := flag.String("mqtt", "", "MQTT broker URL; enables MQTT alerts")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		return config.Config{}, err
	}
	if *configPath == "" {
		*configPath = os.Getenv("MOTOSAAS_CONFIG")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *model != "" {
		cfg.Model.Path = *model
	}
	if *labels != "" {
		cfg.Model.LabelsPath = *labels
	}
	if *device != "" {
		cfg.Camera.Device = *device
	}
	if *facing != "" {
		cfg.Camera.Facing = camera.Facing(*facing)
	}
	if *rotation >= 0 {
		cfg.Camera.Rotation = *rotation
	}
	if *port != "" {
		cfg.Web.Port = *port
	}
	if *noWeb {
		cfg.Web.Enabled = false
	}
	if *mqttBroker != "" {
		cfg.Alert.MQTT.Enabled = true
		cfg.Alert.MQTT.Broker = *mqttBroker
	}

	if err := cfg.ResolveLabels(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
