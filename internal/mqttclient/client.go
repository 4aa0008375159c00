package mqttclient

import (
	"fmt"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Connect подключается к брокеру. onConnect вызывается при каждом (пере)подключении,
// там удобно оформлять подписки.
func Connect(cfg config.MQTTConfig, suffix string, onConnect func(mqtt.Client), logger *zap.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("%s-%s-%d", cfg.ClientID, suffix, time.Now().Unix()))
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(c mqtt.Client) {
		logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker), zap.String("role", suffix))
		if onConnect != nil {
			onConnect(c)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.String("role", suffix), zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return client, nil
}
