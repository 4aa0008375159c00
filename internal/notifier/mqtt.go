package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher часть mqtt.Client, которая нужна для отправки
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT публикует тревогу в топик с QoS 1
type MQTT struct {
	client Publisher
	topic  string
	logger *zap.Logger
}

func NewMQTT(client Publisher, topic string, logger *zap.Logger) *MQTT {
	return &MQTT{
		client: client,
		topic:  topic,
		logger: logger,
	}
}

func (n *MQTT) Send(_ context.Context, message string) {
	token := n.client.Publish(n.topic, 1, false, message)

	var err error
	if !token.WaitTimeout(publishTimeout) {
		err = errors.New("publish timeout")
	} else {
		err = token.Error()
	}

	if err != nil {
		metrics.AlertsDeliveryFailed.WithLabelValues("mqtt").Inc()
		n.logger.Error("MQTT delivery failed",
			zap.String("topic", n.topic),
			zap.Error(err))
		return
	}

	metrics.AlertsSent.WithLabelValues("mqtt").Inc()
}
