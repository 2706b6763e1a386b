package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/models"
)

// Publisher forwards readings to an external broker.
type Publisher interface {
	Publish(ctx context.Context, reading models.SensorReading) error
	Close()
}

// NoopPublisher discards readings. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, reading models.SensorReading) error { return nil }
func (NoopPublisher) Close()                                                         {}

// MQTTPublisher publishes readings to <topic>/<train_id>.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// NewMQTTPublisher connects to brokerURL, e.g. tcp://localhost:1883.
func NewMQTTPublisher(brokerURL, topic string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("metro-fleet-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	}
	opts.OnConnect = func(client mqtt.Client) {
		log.WithField("broker", brokerURL).Info("MQTT connected")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTPublisher{client: client, topic: topic}, nil
}

// TopicFor returns the topic a reading for trainID is published on.
func TopicFor(base string, trainID int) string {
	return fmt.Sprintf("%s/%d", base, trainID)
}

func (p *MQTTPublisher) Publish(ctx context.Context, reading models.SensorReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	token := p.client.Publish(TopicFor(p.topic, reading.TrainID), 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects, allowing 250ms for in-flight messages.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
