package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const message = "Warning, patient with id: 1234, need help"

func TestLog_Send(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLog(zap.New(core))

	n.Send(context.Background(), message)

	entries := logs.FilterMessage("ALERT").All()
	require.Len(t, entries, 1)
	assert.Equal(t, message, entries[0].ContextMap()["message"])
}

func TestWebhook_Send(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		received = append(received, body["text"])
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second, zap.NewNop())
	n.Send(context.Background(), message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{message}, received)
}

func TestWebhook_SendFailureIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.ErrorLevel)
	n := NewWebhook(srv.URL, time.Second, zap.New(core))

	assert.NotPanics(t, func() { n.Send(context.Background(), message) })

	entries := logs.FilterMessage("Webhook delivery failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "HTTP 502")
}

func TestWebhook_Unreachable(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	n := NewWebhook("http://127.0.0.1:1", 100*time.Millisecond, zap.New(core))

	n.Send(context.Background(), message)
	assert.Equal(t, 1, logs.FilterMessage("Webhook delivery failed").Len())
}

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func TestMQTT_Send(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", "alerts/patients", byte(1), false, message).Return(&fakeToken{}).Once()

	n := NewMQTT(publisher, "alerts/patients", zap.NewNop())
	n.Send(context.Background(), message)

	publisher.AssertExpectations(t)
}

func TestMQTT_SendFailures(t *testing.T) {
	tests := []struct {
		name  string
		token *fakeToken
	}{
		{"broker error", &fakeToken{err: errors.New("not connected")}},
		{"timeout", &fakeToken{timeout: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := new(MockPublisher)
			publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.token)

			core, logs := observer.New(zapcore.ErrorLevel)
			n := NewMQTT(publisher, "alerts/patients", zap.New(core))
			n.Send(context.Background(), message)

			assert.Equal(t, 1, logs.FilterMessage("MQTT delivery failed").Len())
		})
	}
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, message string) {
	m.Called(ctx, message)
}

func TestMulti_Send(t *testing.T) {
	first, second := new(MockNotifier), new(MockNotifier)
	first.On("Send", mock.Anything, message).Return().Once()
	second.On("Send", mock.Anything, message).Return().Once()

	Multi{first, second}.Send(context.Background(), message)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMulti_Empty(t *testing.T) {
	assert.NotPanics(t, func() { Multi(nil).Send(context.Background(), message) })
}
