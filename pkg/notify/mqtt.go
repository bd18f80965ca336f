package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// publisher is the part of mqtt.Client the notifier needs
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes alerts to an MQTT topic, e.g. for home automation
type MQTTNotifier struct {
	client publisher
	topic  string
	now    func() time.Time
}

type mqttMessage struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// DialMQTT connects to broker and returns a notifier publishing to topic
func DialMQTT(broker, clientID, topic string) (*MQTTNotifier, func(), error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if clientID != "" {
		opts.SetClientID(clientID)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, nil, fmt.Errorf("timed out connecting to MQTT broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	slog.Info("Connected to MQTT broker", slog.String("broker", broker), slog.String("topic", topic))
	return NewMQTTNotifier(client, topic), func() { client.Disconnect(250) }, nil
}

// NewMQTTNotifier creates a notifier publishing through client
func NewMQTTNotifier(client publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topic: topic, now: time.Now}
}

// Notify publishes the notification as JSON
func (n *MQTTNotifier) Notify(_ context.Context, title, body string) error {
	payload, err := json.Marshal(mqttMessage{Title: title, Body: body, SentAt: n.now()})
	if err != nil {
		return err
	}

	token := n.client.Publish(n.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to topic %s", n.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", n.topic, err)
	}
	return nil
}
