package service

import (
	"context"

	"github.com/CoolE88/patient-monitor-service/internal/domain"

	"go.uber.org/zap"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Store хранилище, которое умеет отвечать на проверку здоровья
type Store interface {
	PatientRecordStore
	HealthChecker
}

// PatientService регистрация и чтение карточек пациентов
type PatientService struct {
	store  Store
	logger *zap.Logger
}

func NewPatientService(store Store, logger *zap.Logger) *PatientService {
	return &PatientService{
		store:  store,
		logger: logger,
	}
}

func (s *PatientService) CheckDBConnection(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

// AddPatient сохраняет карточку и возвращает её ID
func (s *PatientService) AddPatient(ctx context.Context, record *domain.PatientRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Add(ctx, record)
	if err != nil {
		s.logger.Error("[PatientService] Failed to add patient", zap.Error(err))
		return "", err
	}

	s.logger.Info("[PatientService] Patient added", zap.String("patient_id", id))
	return id, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id string) (*domain.PatientRecord, error) {
	if err := domain.ValidatePatientID(id); err != nil {
		return nil, err
	}

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("[PatientService] Failed to get patient",
			zap.String("patient_id", id),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// Service всё, что нужно транспортам
type Service struct {
	*VitalsMonitor
	*PatientService
}

func New(store Store, notifier AlertNotifier, logger *zap.Logger) *Service {
	return &Service{
		VitalsMonitor:  NewVitalsMonitor(store, notifier, logger),
		PatientService: NewPatientService(store, logger),
	}
}
