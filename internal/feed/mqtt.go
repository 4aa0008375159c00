package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reading сообщение от прикроватного монитора
type Reading struct {
	PatientID   string              `json:"patient_id"`
	Kind        domain.VitalKind    `json:"kind"`
	Upper       int                 `json:"upper,omitempty"`
	Lower       int                 `json:"lower,omitempty"`
	Temperature decimal.NullDecimal `json:"temperature"`
	Timestamp   *time.Time          `json:"timestamp,omitempty"`
}

// Subscriber переводит сообщения из MQTT в очередь показаний
type Subscriber struct {
	topic  string
	out    chan<- *domain.Observation
	logger *zap.Logger
}

func NewSubscriber(topic string, out chan<- *domain.Observation, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		topic:  topic,
		out:    out,
		logger: logger,
	}
}

// Subscribe оформляет подписку, вызывать из OnConnect
func (s *Subscriber) Subscribe(client mqtt.Client) {
	token := client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		s.Handle(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error("Failed to subscribe to device feed", zap.String("topic", s.topic), zap.Error(err))
		return
	}
	s.logger.Info("Subscribed to device feed", zap.String("topic", s.topic))
}

// Handle разбирает одно сообщение. Невалидные сообщения и сообщения, не влезшие
// в очередь, отбрасываются.
func (s *Subscriber) Handle(topic string, payload []byte) {
	obs, err := Decode(payload)
	if err != nil {
		metrics.ObservationsDropped.Inc()
		s.logger.Warn("Invalid device reading, dropping",
			zap.String("topic", topic),
			zap.Error(err))
		return
	}

	select {
	case s.out <- obs:
		s.logger.Debug("Queued device reading",
			zap.String("topic", topic),
			zap.String("patient_id", obs.PatientID))
	default:
		metrics.ObservationsDropped.Inc()
		s.logger.Warn("Observation queue full, dropping reading",
			zap.String("patient_id", obs.PatientID))
	}
}

func Decode(payload []byte) (*domain.Observation, error) {
	var r Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	obs := &domain.Observation{
		PatientID:  r.PatientID,
		Kind:       r.Kind,
		ObservedAt: time.Now().UTC(),
	}
	if r.Timestamp != nil {
		obs.ObservedAt = r.Timestamp.UTC()
	}

	switch r.Kind {
	case domain.KindBloodPressure:
		obs.BloodPressure = domain.BloodPressure{Upper: r.Upper, Lower: r.Lower}
	case domain.KindTemperature:
		if !r.Temperature.Valid {
			return nil, fmt.Errorf("%w: temperature is missing", domain.ErrInvalidArgument)
		}
		obs.Temperature = r.Temperature.Decimal
	}

	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return obs, nil
}
