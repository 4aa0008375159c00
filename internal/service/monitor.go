package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTemperatureTolerance отклонение от нормы (в градусах), начиная с которого
// температура считается ненормальной
var DefaultTemperatureTolerance = decimal.RequireFromString("1.5")

// PatientRecordStore хранилище карточек пациентов
type PatientRecordStore interface {
	Add(ctx context.Context, record *domain.PatientRecord) (string, error)
	GetByID(ctx context.Context, id string) (*domain.PatientRecord, error)
}

// AlertNotifier доставляет сообщение по какому-либо каналу. Результат доставки
// монитору не нужен.
type AlertNotifier interface {
	Send(ctx context.Context, message string)
}

// AlertMessage формат тревожного сообщения
func AlertMessage(patientID string) string {
	return fmt.Sprintf("Warning, patient with id: %s, need help", patientID)
}

// VitalsMonitor сравнивает показатели пациента с его нормой и при отклонении
// отправляет тревогу. Состояния не хранит.
type VitalsMonitor struct {
	store     PatientRecordStore
	notifier  AlertNotifier
	tolerance decimal.Decimal
	logger    *zap.Logger
}

func NewVitalsMonitor(store PatientRecordStore, notifier AlertNotifier, logger *zap.Logger) *VitalsMonitor {
	return &VitalsMonitor{
		store:     store,
		notifier:  notifier,
		tolerance: DefaultTemperatureTolerance,
		logger:    logger,
	}
}

// CheckBloodPressure давление считается нормальным только при точном совпадении
// обоих значений с нормой.
func (m *VitalsMonitor) CheckBloodPressure(ctx context.Context, patientID string, observed domain.BloodPressure) (domain.CheckResult, error) {
	if err := domain.ValidatePatientID(patientID); err != nil {
		return domain.CheckResult{}, err
	}
	if err := observed.Validate(); err != nil {
		return domain.CheckResult{}, err
	}

	record, err := m.lookup(ctx, patientID, domain.KindBloodPressure)
	if err != nil {
		return domain.CheckResult{}, err
	}

	abnormal := !observed.Equal(record.HealthInfo.BloodPressure)
	return m.report(ctx, patientID, domain.KindBloodPressure, abnormal), nil
}

// CheckTemperature температура ненормальна, если отклонение от нормы не меньше допуска.
func (m *VitalsMonitor) CheckTemperature(ctx context.Context, patientID string, observed domain.Temperature) (domain.CheckResult, error) {
	if err := domain.ValidatePatientID(patientID); err != nil {
		return domain.CheckResult{}, err
	}
	if err := domain.ValidateTemperature(observed); err != nil {
		return domain.CheckResult{}, err
	}

	record, err := m.lookup(ctx, patientID, domain.KindTemperature)
	if err != nil {
		return domain.CheckResult{}, err
	}

	deviation := domain.Deviation(observed, record.HealthInfo.NormalTemperature)
	abnormal := deviation.GreaterThanOrEqual(m.tolerance)
	return m.report(ctx, patientID, domain.KindTemperature, abnormal), nil
}

func (m *VitalsMonitor) lookup(ctx context.Context, patientID string, kind domain.VitalKind) (*domain.PatientRecord, error) {
	record, err := m.store.GetByID(ctx, patientID)
	if err != nil {
		metrics.VitalsChecks.WithLabelValues(string(kind), "error").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			m.logger.Warn("[VitalsMonitor] Patient not found",
				zap.String("patient_id", patientID),
				zap.String("kind", string(kind)))
		} else {
			m.logger.Error("[VitalsMonitor] Failed to load patient record",
				zap.String("patient_id", patientID),
				zap.Error(err))
		}
		return nil, err
	}
	return record, nil
}

func (m *VitalsMonitor) report(ctx context.Context, patientID string, kind domain.VitalKind, abnormal bool) domain.CheckResult {
	result := domain.CheckResult{PatientID: patientID, Kind: kind}
	if !abnormal {
		metrics.VitalsChecks.WithLabelValues(string(kind), "normal").Inc()
		return result
	}

	result.Abnormal = true
	result.Message = AlertMessage(patientID)
	m.notifier.Send(ctx, result.Message)
	metrics.VitalsChecks.WithLabelValues(string(kind), "abnormal").Inc()

	m.logger.Info("[VitalsMonitor] Alert sent",
		zap.String("patient_id", patientID),
		zap.String("kind", string(kind)))

	return result
}
