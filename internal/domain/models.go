package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Temperature температура тела в градусах Цельсия
type Temperature = decimal.Decimal

// BloodPressure давление: верхнее (систолическое) и нижнее (диастолическое)
type BloodPressure struct {
	Upper int `json:"upper"`
	Lower int `json:"lower"`
}

func (bp BloodPressure) Equal(other BloodPressure) bool {
	return bp.Upper == other.Upper && bp.Lower == other.Lower
}

// HealthInfo базовые ("нормальные") показатели пациента
type HealthInfo struct {
	NormalTemperature Temperature   `json:"normal_temperature"`
	BloodPressure     BloodPressure `json:"blood_pressure"`
}

// PatientRecord карточка пациента
type PatientRecord struct {
	ID         string     `json:"id" db:"id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	BirthDate  time.Time  `json:"birth_date" db:"birth_date"`
	HealthInfo HealthInfo `json:"health_info"`
}

type VitalKind string

const (
	KindBloodPressure VitalKind = "blood_pressure"
	KindTemperature   VitalKind = "temperature"
)

// Observation показание, пришедшее с устройства
type Observation struct {
	PatientID     string        `json:"patient_id"`
	Kind          VitalKind     `json:"kind"`
	BloodPressure BloodPressure `json:"blood_pressure"`
	Temperature   Temperature   `json:"temperature"`
	ObservedAt    time.Time     `json:"observed_at"`
}

// CheckResult результат одной проверки
type CheckResult struct {
	PatientID string    `json:"patient_id"`
	Kind      VitalKind `json:"kind"`
	Abnormal  bool      `json:"abnormal"`
	Message   string    `json:"message,omitempty"`
}

// NewTemperature разбирает строку вида "36.65"
func NewTemperature(s string) (Temperature, error) {
	t, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return t, nil
}

func TemperatureFromFloat(f float64) Temperature {
	return decimal.NewFromFloat(f).Round(2)
}

// Deviation абсолютная разница между наблюдаемым и базовым значением
func Deviation(observed, baseline Temperature) decimal.Decimal {
	return observed.Sub(baseline).Abs()
}
