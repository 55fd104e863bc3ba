// Package notify pushes reminder banners to an MQTT topic, where the
// device-side push notification scheduler picks them up.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/alerts"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

const (
	DefaultTopic    = "driveassist/reminders"
	DefaultClientID = "driveassist-app"
	qosAtLeastOnce  = 1
)

var ErrNoBroker = errors.New("mqtt broker not configured")

// Publisher delivers a reminder to the device.
type Publisher interface {
	PublishBanner(ctx context.Context, b alerts.Banner, at time.Time) (bool, error)
	Close()
}

// Reminder is the message payload.
type Reminder struct {
	Headline    string          `json:"headline"`
	Severity    models.Severity `json:"severity"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// client is the subset of mqtt.Client used here.
type client interface {
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// Options configures the MQTT connection.
type Options struct {
	Broker   string
	Topic    string
	ClientID string
}

// MQTTPublisher publishes reminders with QoS 1.
type MQTTPublisher struct {
	client client
	topic  string
}

// NewMQTTPublisher builds a publisher for opts.Broker. It does not connect.
func NewMQTTPublisher(opts Options) (*MQTTPublisher, error) {
	if opts.Broker == "" {
		return nil, ErrNoBroker
	}
	if opts.ClientID == "" {
		opts.ClientID = DefaultClientID
	}
	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(false)
	return newPublisher(mqtt.NewClient(co), opts.Topic), nil
}

func newPublisher(c client, topic string) *MQTTPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTPublisher{client: c, topic: topic}
}

// Connect opens the broker connection.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// PublishBanner sends b when it has a headline. It reports whether a
// message was sent.
func (p *MQTTPublisher) PublishBanner(ctx context.Context, b alerts.Banner, at time.Time) (bool, error) {
	if b.Headline == nil {
		return false, nil
	}
	payload, err := json.Marshal(Reminder{Headline: *b.Headline, Severity: b.Severity, GeneratedAt: at.UTC()})
	if err != nil {
		return false, fmt.Errorf("encode reminder: %w", err)
	}
	if !p.client.IsConnected() {
		if err := p.Connect(ctx); err != nil {
			return false, err
		}
	}
	if err := wait(ctx, p.client.Publish(p.topic, qosAtLeastOnce, false, payload)); err != nil {
		return false, fmt.Errorf("mqtt publish: %w", err)
	}
	log.WithFields(log.Fields{"topic": p.topic, "severity": b.Severity}).Info("reminder published")
	return true, nil
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
