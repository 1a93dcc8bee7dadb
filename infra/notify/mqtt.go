// Package notify pushes plan lifecycle notifications to external consumers.
// Shop-floor displays subscribe to the publish topic and refresh their view
// when a new plan version lands.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/printforge/planner/infra/logger"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Topic     string `json:"topic"`
	QoS       byte   `json:"qos"`
	Retain    bool   `json:"retain"`
	TimeoutMS int    `json:"timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "planner/plan/published"
	}
	if c.ClientID == "" {
		c.ClientID = "planner-notify"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("notify: broker is required when enabled")
	}
	return nil
}

// PlanNotification is the JSON payload published after a successful plan
// publish.
type PlanNotification struct {
	Version       int64     `json:"version"`
	CyclesCreated int       `json:"cycles_created"`
	CyclesDeleted int       `json:"cycles_deleted"`
	PublishedAt   time.Time `json:"published_at"`
}

// Notifier publishes plan notifications.
type Notifier interface {
	PlanPublished(n PlanNotification) error
	Close()
}

// NopNotifier discards notifications. Used when notify is disabled.
type NopNotifier struct{}

func (NopNotifier) PlanPublished(PlanNotification) error { return nil }
func (NopNotifier) Close()                               {}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTNotifier implements Notifier over Eclipse Paho.
type MQTTNotifier struct {
	cli     pahoClient
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

// NewMQTTNotifier connects to the broker and returns a ready notifier.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)
	n := &MQTTNotifier{
		cli:     newMQTTClient(opts),
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		log:     logger.New("notify"),
	}
	token := n.cli.Connect()
	if !token.WaitTimeout(n.timeout) {
		return nil, fmt.Errorf("notify: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("notify: connect: %w", err)
	}
	return n, nil
}

// PlanPublished publishes the notification as JSON. The plan itself is not
// carried on the wire; consumers fetch it through the store.
func (n *MQTTNotifier) PlanPublished(notif PlanNotification) error {
	payload, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	token := n.cli.Publish(n.topic, n.qos, n.retain, payload)
	if !token.WaitTimeout(n.timeout) {
		return fmt.Errorf("notify: publish to %s timed out", n.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	n.log.Infof("plan version %d announced on %s", notif.Version, n.topic)
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	if n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
