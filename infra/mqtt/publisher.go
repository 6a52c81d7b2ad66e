package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/hybridship/powersim/core/metrics"
	"github.com/hybridship/powersim/infra/logger"
)

// Config defines the connection parameters for the result publisher.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Topic is the base topic; records go to <topic>/timestep and
	// <topic>/summary.
	Topic  string `json:"topic"`
	QoS    byte   `json:"qos"`
	Retain bool   `json:"retain"`
}

// pahoClient is the narrow slice of the Paho API the publisher needs.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher forwards simulation records to an MQTT broker as JSON messages.
// It implements the metrics Sink interface so it can be fanned out together
// with the other reporting sinks.
type Publisher struct {
	client pahoClient
	log    logger.Logger
	cfg    Config
}

// NewPublisher connects to the broker and returns the publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker address required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("mqtt: base topic required")
	}
	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{client: c, log: log, cfg: cfg}, nil
}

// RecordTimesteps publishes one JSON message per timestep record.
func (p *Publisher) RecordTimesteps(records []coremetrics.TimestepRecord) error {
	topic := p.cfg.Topic + "/timestep"
	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if token := p.client.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload); token.Wait() && token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

// RecordRunSummary publishes the run summary.
func (p *Publisher) RecordRunSummary(sum coremetrics.RunSummary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.cfg.Topic+"/summary", p.cfg.QoS, p.cfg.Retain, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
