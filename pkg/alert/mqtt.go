package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("alert: mqtt publish timeout")

// Publisher is the subset of mqtt.Client used by MQTTPresenter.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTConfig configures the MQTT presenter.
type MQTTConfig struct {
	Broker   string        // host:port
	ClientID string        // MQTT client id
	Topic    string        // Topic the signal is published to
	QoS      byte          // Delivery guarantee
	Retained bool          // Keep the last signal on the broker for late subscribers
	Timeout  time.Duration // Publish and connect timeout
}

// DefaultMQTTConfig returns defaults for a local broker.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:   "localhost:1883",
		ClientID: "motosaas",
		Topic:    "motosaas/alert",
		QoS:      1,
		Retained: true,
		Timeout:  2 * time.Second,
	}
}

// MQTTPresenter publishes show/hide messages to an MQTT topic.
type MQTTPresenter struct {
	cfg    MQTTConfig
	pub    Publisher
	client mqtt.Client // nil when built from a bare Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewMQTTPresenter wraps an existing publisher.
func NewMQTTPresenter(pub Publisher, cfg MQTTConfig) *MQTTPresenter {
	return &MQTTPresenter{
		cfg:    cfg,
		pub:    pub,
		logger: slog.Default().With("component", "alert.mqtt", "topic", cfg.Topic),
		now:    time.Now,
	}
}

// DialMQTT connects to the broker and returns a presenter that owns the client.
func DialMQTT(ctx context.Context, cfg MQTTConfig) (*MQTTPresenter, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		slog.Warn("mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", cfg.Broker)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()

	select {
	case <-token.Done():
	case <-time.After(cfg.Timeout):
		client.Disconnect(0)
		return nil, fmt.Errorf("alert: mqtt connect %s: timeout", cfg.Broker)
	case <-ctx.Done():
		client.Disconnect(0)
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("alert: mqtt connect %s: %w", cfg.Broker, err)
	}

	p := NewMQTTPresenter(client, cfg)
	p.client = client
	p.logger.Info("mqtt presenter connected", "broker", cfg.Broker)
	return p, nil
}

// Show implements Presenter.
func (p *MQTTPresenter) Show(ctx context.Context) error {
	return p.publish(ctx, SignalShow)
}

// Hide implements Presenter.
func (p *MQTTPresenter) Hide(ctx context.Context) error {
	return p.publish(ctx, SignalHide)
}

func (p *MQTTPresenter) publish(ctx context.Context, sig Signal) error {
	payload, err := newMessage(sig, p.cfg.ClientID, p.now()).encode()
	if err != nil {
		return err
	}

	token := p.pub.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retained, payload)
	select {
	case <-token.Done():
	case <-time.After(p.cfg.Timeout):
		return ErrPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("alert: mqtt publish %s: %w", sig, err)
	}
	return nil
}

// Close disconnects the owned client, if any.
func (p *MQTTPresenter) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
	}
	return nil
}
