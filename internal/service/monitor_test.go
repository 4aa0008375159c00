package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const alertFor1234 = "Warning, patient with id: 1234, need help"

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Add(ctx context.Context, record *domain.PatientRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientRecord), args.Error(1)
}

func (m *MockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, message string) {
	m.Called(ctx, message)
}

func patient1234() *domain.PatientRecord {
	return &domain.PatientRecord{
		ID:        "1234",
		FirstName: "Иван",
		LastName:  "Петров",
		BirthDate: time.Date(1980, 11, 26, 0, 0, 0, 0, time.UTC),
		HealthInfo: domain.HealthInfo{
			NormalTemperature: decimal.RequireFromString("36.65"),
			BloodPressure:     domain.BloodPressure{Upper: 120, Lower: 80},
		},
	}
}

func newMonitor(t *testing.T) (*VitalsMonitor, *MockStore, *MockNotifier) {
	t.Helper()
	store := new(MockStore)
	notifier := new(MockNotifier)
	store.On("GetByID", mock.Anything, "1234").Return(patient1234(), nil)
	store.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	return NewVitalsMonitor(store, notifier, zap.NewNop()), store, notifier
}

func TestAlertMessage(t *testing.T) {
	assert.Equal(t, alertFor1234, AlertMessage("1234"))
	assert.Equal(t, "Warning, patient with id: a-b, need help", AlertMessage("a-b"))
}

func TestVitalsMonitor_CheckBloodPressure_Normal(t *testing.T) {
	monitor, _, notifier := newMonitor(t)

	result, err := monitor.CheckBloodPressure(context.Background(), "1234", domain.BloodPressure{Upper: 120, Lower: 80})
	require.NoError(t, err)
	assert.False(t, result.Abnormal)
	assert.Empty(t, result.Message)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVitalsMonitor_CheckBloodPressure_Warning(t *testing.T) {
	tests := []struct {
		name     string
		pressure domain.BloodPressure
	}{
		{"inverted", domain.BloodPressure{Upper: 60, Lower: 120}},
		{"high upper low lower", domain.BloodPressure{Upper: 140, Lower: 60}},
		{"upper differs", domain.BloodPressure{Upper: 121, Lower: 80}},
		{"lower differs", domain.BloodPressure{Upper: 120, Lower: 79}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor, _, notifier := newMonitor(t)
			notifier.On("Send", mock.Anything, alertFor1234).Return().Once()

			result, err := monitor.CheckBloodPressure(context.Background(), "1234", tt.pressure)
			require.NoError(t, err)
			assert.True(t, result.Abnormal)
			assert.Equal(t, alertFor1234, result.Message)
			notifier.AssertNumberOfCalls(t, "Send", 1)
			notifier.AssertExpectations(t)
		})
	}
}

func TestVitalsMonitor_CheckTemperature(t *testing.T) {
	tests := []struct {
		observed string
		abnormal bool
	}{
		{"36.65", false},
		{"36.60", false},
		{"36.70", false},
		{"35.16", false},
		{"38.14", false},
		{"35.15", true},
		{"38.15", true},
		{"34.00", true},
		{"40.10", true},
		{"1.5", true},
		{"2.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.observed, func(t *testing.T) {
			monitor, _, notifier := newMonitor(t)
			notifier.On("Send", mock.Anything, alertFor1234).Return()

			result, err := monitor.CheckTemperature(context.Background(), "1234", decimal.RequireFromString(tt.observed))
			require.NoError(t, err)
			assert.Equal(t, tt.abnormal, result.Abnormal)

			if tt.abnormal {
				notifier.AssertNumberOfCalls(t, "Send", 1)
				assert.Equal(t, alertFor1234, result.Message)
			} else {
				notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestVitalsMonitor_NotFound(t *testing.T) {
	monitor, _, notifier := newMonitor(t)

	_, err := monitor.CheckBloodPressure(context.Background(), "nonexistent", domain.BloodPressure{Upper: 120, Lower: 80})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = monitor.CheckTemperature(context.Background(), "nonexistent", decimal.RequireFromString("30"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVitalsMonitor_StoreErrorPropagated(t *testing.T) {
	store := new(MockStore)
	notifier := new(MockNotifier)
	dbErr := errors.New("connection refused")
	store.On("GetByID", mock.Anything, "1234").Return(nil, fmt.Errorf("failed to get patient: %w", dbErr))
	monitor := NewVitalsMonitor(store, notifier, zap.NewNop())

	_, err := monitor.CheckBloodPressure(context.Background(), "1234", domain.BloodPressure{Upper: 60, Lower: 120})
	assert.ErrorIs(t, err, dbErr)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVitalsMonitor_InvalidArgument(t *testing.T) {
	monitor, store, notifier := newMonitor(t)
	ctx := context.Background()

	_, err := monitor.CheckBloodPressure(ctx, "", domain.BloodPressure{Upper: 120, Lower: 80})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = monitor.CheckBloodPressure(ctx, "1234", domain.BloodPressure{Upper: -120, Lower: 80})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = monitor.CheckTemperature(ctx, " ", decimal.RequireFromString("36.6"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = monitor.CheckTemperature(ctx, "1234", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVitalsMonitor_Idempotent(t *testing.T) {
	monitor, _, notifier := newMonitor(t)
	notifier.On("Send", mock.Anything, alertFor1234).Return()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		result, err := monitor.CheckBloodPressure(ctx, "1234", domain.BloodPressure{Upper: 140, Lower: 60})
		require.NoError(t, err)
		assert.Equal(t, alertFor1234, result.Message)
		notifier.AssertNumberOfCalls(t, "Send", i)

		result, err = monitor.CheckBloodPressure(ctx, "1234", domain.BloodPressure{Upper: 120, Lower: 80})
		require.NoError(t, err)
		assert.False(t, result.Abnormal)
		notifier.AssertNumberOfCalls(t, "Send", i)
	}
}

// Перебор по сетке значений: ровно один вызов для отклонений, ноль для нормы.
func TestVitalsMonitor_BloodPressureGrid(t *testing.T) {
	baseline := patient1234().HealthInfo.BloodPressure

	for upper := 110; upper <= 130; upper += 5 {
		for lower := 70; lower <= 90; lower += 5 {
			monitor, _, notifier := newMonitor(t)
			notifier.On("Send", mock.Anything, alertFor1234).Return()
			observed := domain.BloodPressure{Upper: upper, Lower: lower}

			_, err := monitor.CheckBloodPressure(context.Background(), "1234", observed)
			require.NoError(t, err)

			expected := 1
			if observed.Equal(baseline) {
				expected = 0
			}
			notifier.AssertNumberOfCalls(t, "Send", expected)
		}
	}
}

func TestVitalsMonitor_TemperatureGrid(t *testing.T) {
	baseline := patient1234().HealthInfo.NormalTemperature
	step := decimal.RequireFromString("0.05")

	for observed := decimal.RequireFromString("34.00"); observed.LessThanOrEqual(decimal.RequireFromString("39.50")); observed = observed.Add(step) {
		monitor, _, notifier := newMonitor(t)
		notifier.On("Send", mock.Anything, alertFor1234).Return()

		_, err := monitor.CheckTemperature(context.Background(), "1234", observed)
		require.NoError(t, err)

		expected := 0
		if observed.Sub(baseline).Abs().GreaterThanOrEqual(DefaultTemperatureTolerance) {
			expected = 1
		}
		notifier.AssertNumberOfCalls(t, "Send", expected)
	}
}
