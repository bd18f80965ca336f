package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *fakeToken) Error() error                   { return t.err }

type fakePublisher struct {
	topic   string
	payload []byte
	token   *fakeToken
}

func (p *fakePublisher) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	p.topic = topic
	p.payload = payload.([]byte)
	return p.token
}

type recordingNotifier struct {
	titles []string
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func TestMQTTNotifierPublishesJSON(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{}}
	n := NewMQTTNotifier(pub, "rift/alerts")
	sent := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return sent }

	require.NoError(t, n.Notify(context.Background(), "Rift is Now Open!", "Enter now!"))

	assert.Equal(t, "rift/alerts", pub.topic)
	var msg mqttMessage
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.Equal(t, mqttMessage{Title: "Rift is Now Open!", Body: "Enter now!", SentAt: sent}, msg)
}

func TestMQTTNotifierErrors(t *testing.T) {
	brokerErr := errors.New("not connected")
	n := NewMQTTNotifier(&fakePublisher{token: &fakeToken{err: brokerErr}}, "rift/alerts")
	assert.ErrorIs(t, n.Notify(context.Background(), "t", "b"), brokerErr)

	n = NewMQTTNotifier(&fakePublisher{token: &fakeToken{timeout: true}}, "rift/alerts")
	assert.ErrorContains(t, n.Notify(context.Background(), "t", "b"), "timed out")
}

func TestMultiTriesEveryNotifier(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("permission denied")}
	ok := &recordingNotifier{}

	err := Multi{failing, ok, LogNotifier{}}.Notify(context.Background(), "title", "body")

	assert.ErrorContains(t, err, "permission denied")
	assert.Equal(t, []string{"title"}, ok.titles)
}

func TestMultiEmpty(t *testing.T) {
	assert.NoError(t, Multi{}.Notify(context.Background(), "t", "b"))
}
