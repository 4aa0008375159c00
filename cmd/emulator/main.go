// Эмулятор прикроватного монитора: публикует случайные показания пациента в MQTT.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/config"
	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/feed"
	"github.com/CoolE88/patient-monitor-service/internal/mqttclient"
	"github.com/CoolE88/patient-monitor-service/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	patientID := flag.String("patient", "1234", "patient id")
	interval := flag.Duration("interval", time.Second, "publish interval")
	upper := flag.Int("upper", 120, "normal systolic pressure")
	lower := flag.Int("lower", 80, "normal diastolic pressure")
	normal := flag.String("temperature", "36.65", "normal temperature")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	normalTemp, err := decimal.NewFromString(*normal)
	if err != nil {
		logger.Fatal("Invalid normal temperature", zap.Error(err))
	}

	cfg := config.LoadConfig()
	client, err := mqttclient.Connect(cfg.MQTT, "emulator", nil, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer client.Disconnect(250)

	generator := utils.NewVitalsGenerator(time.Now().UnixNano())
	spread := decimal.RequireFromString("2")
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for tick := 0; ; tick++ {
		select {
		case <-quit:
			logger.Info("Emulator stopped")
			return
		case <-ticker.C:
			now := time.Now().UTC()
			reading := feed.Reading{PatientID: *patientID, Timestamp: &now}

			// чередуем давление и температуру
			if tick%2 == 0 {
				reading.Kind = domain.KindBloodPressure
				reading.Upper, reading.Lower = generator.BloodPressure(*upper, *lower, 2)
			} else {
				reading.Kind = domain.KindTemperature
				reading.Temperature = decimal.NewNullDecimal(generator.Temperature(normalTemp, spread))
			}

			payload, err := json.Marshal(reading)
			if err != nil {
				logger.Error("Failed to encode reading", zap.Error(err))
				continue
			}

			topic := fmt.Sprintf("vitals/%s/%s", *patientID, reading.Kind)
			token := client.Publish(topic, 1, false, payload)
			if token.WaitTimeout(5*time.Second) && token.Error() == nil {
				logger.Debug("Published reading", zap.String("topic", topic), zap.ByteString("payload", payload))
			} else {
				logger.Warn("Failed to publish reading", zap.String("topic", topic), zap.Error(token.Error()))
			}
		}
	}
}
