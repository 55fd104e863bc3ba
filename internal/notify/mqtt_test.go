package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Driverassistance/driveassist-app/internal/alerts"
	"github.com/Driverassistance/driveassist-app/internal/models"
)

// fakeToken completes immediately unless pending is set.
type fakeToken struct {
	done chan struct{}
	err  error
}

func doneToken(err error) *fakeToken {
	ch := make(chan struct{})
	close(ch)
	return &fakeToken{done: ch, err: err}
}

func pendingToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Connect() mqtt.Token {
	return m.Called().Get(0).(mqtt.Token)
}

func (m *MockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return m.Called(topic, qos, retained, payload).Get(0).(mqtt.Token)
}

func (m *MockClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *MockClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func headline(s string) *string { return &s }

var at = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func TestPublishBanner_SendsReminder(t *testing.T) {
	c := new(MockClient)
	c.On("IsConnected").Return(false).Once()
	c.On("Connect").Return(doneToken(nil))
	c.On("Publish", "cars/1", byte(1), false, mock.Anything).Return(doneToken(nil))

	p := newPublisher(c, "cars/1")
	sent, err := p.PublishBanner(context.Background(),
		alerts.Banner{Headline: headline("Страховка: через 5 дн"), Severity: models.SeverityWarning}, at)

	require.NoError(t, err)
	assert.True(t, sent)
	c.AssertExpectations(t)

	payload := c.Calls[2].Arguments.Get(3).([]byte)
	var got Reminder
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "Страховка: через 5 дн", got.Headline)
	assert.Equal(t, models.SeverityWarning, got.Severity)
	assert.True(t, at.Equal(got.GeneratedAt))
}

func TestPublishBanner_NothingDue(t *testing.T) {
	c := new(MockClient)
	p := newPublisher(c, "")

	sent, err := p.PublishBanner(context.Background(), alerts.Banner{Severity: models.SeverityOK}, at)
	require.NoError(t, err)
	assert.False(t, sent)
	c.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, DefaultTopic, p.topic)
}

func TestPublishBanner_PublishError(t *testing.T) {
	c := new(MockClient)
	c.On("IsConnected").Return(true)
	c.On("Publish", DefaultTopic, byte(1), false, mock.Anything).Return(doneToken(errors.New("not authorized")))

	p := newPublisher(c, "")
	sent, err := p.PublishBanner(context.Background(), alerts.Banner{Headline: headline("x"), Severity: models.SeverityOverdue}, at)
	assert.Error(t, err)
	assert.False(t, sent)
}

func TestPublishBanner_ContextCancelled(t *testing.T) {
	c := new(MockClient)
	c.On("IsConnected").Return(true)
	c.On("Publish", DefaultTopic, byte(1), false, mock.Anything).Return(pendingToken())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	p := newPublisher(c, "")
	_, err := p.PublishBanner(ctx, alerts.Banner{Headline: headline("x")}, at)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnect_Error(t *testing.T) {
	c := new(MockClient)
	c.On("Connect").Return(doneToken(errors.New("connection refused")))

	err := newPublisher(c, "").Connect(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestClose(t *testing.T) {
	c := new(MockClient)
	c.On("IsConnected").Return(true)
	c.On("Disconnect", uint(250)).Return()

	newPublisher(c, "").Close()
	c.AssertExpectations(t)
}

func TestNewMQTTPublisher_RequiresBroker(t *testing.T) {
	_, err := NewMQTTPublisher(Options{})
	assert.ErrorIs(t, err, ErrNoBroker)

	p, err := NewMQTTPublisher(Options{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, p.topic)
}
