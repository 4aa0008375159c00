package domain

import (
	"fmt"
	"strings"
)

func ValidatePatientID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: patient id is empty", ErrInvalidArgument)
	}
	return nil
}

func (bp BloodPressure) Validate() error {
	if bp.Upper <= 0 || bp.Lower <= 0 {
		return fmt.Errorf("%w: blood pressure must be positive, got %d/%d", ErrInvalidArgument, bp.Upper, bp.Lower)
	}
	return nil
}

func ValidateTemperature(t Temperature) error {
	if !t.IsPositive() {
		return fmt.Errorf("%w: temperature must be positive, got %s", ErrInvalidArgument, t.String())
	}
	return nil
}

// Validate проверяет карточку перед сохранением. Пустой ID допустим,
// хранилище назначит его само.
func (r *PatientRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidArgument)
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidArgument)
	}
	if err := r.HealthInfo.BloodPressure.Validate(); err != nil {
		return err
	}
	return ValidateTemperature(r.HealthInfo.NormalTemperature)
}

func (o *Observation) Validate() error {
	if o == nil {
		return fmt.Errorf("%w: observation is nil", ErrInvalidArgument)
	}
	if err := ValidatePatientID(o.PatientID); err != nil {
		return err
	}
	switch o.Kind {
	case KindBloodPressure:
		return o.BloodPressure.Validate()
	case KindTemperature:
		return ValidateTemperature(o.Temperature)
	default:
		return fmt.Errorf("%w: unknown vital kind %q", ErrInvalidArgument, o.Kind)
	}
}
