package feed

import (
	"testing"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, obs *domain.Observation)
		wantErr bool
	}{
		{
			name:    "blood pressure",
			payload: `{"patient_id":"1234","kind":"blood_pressure","upper":60,"lower":120}`,
			check: func(t *testing.T, obs *domain.Observation) {
				assert.Equal(t, domain.BloodPressure{Upper: 60, Lower: 120}, obs.BloodPressure)
			},
		},
		{
			name:    "temperature as string",
			payload: `{"patient_id":"1234","kind":"temperature","temperature":"35.15"}`,
			check: func(t *testing.T, obs *domain.Observation) {
				assert.Equal(t, "35.15", obs.Temperature.String())
			},
		},
		{
			name:    "temperature as number with timestamp",
			payload: `{"patient_id":"1234","kind":"temperature","temperature":36.6,"timestamp":"2025-09-01T10:00:00Z"}`,
			check: func(t *testing.T, obs *domain.Observation) {
				assert.Equal(t, "36.6", obs.Temperature.String())
				assert.True(t, obs.ObservedAt.Equal(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)))
			},
		},
		{name: "missing temperature", payload: `{"patient_id":"1234","kind":"temperature"}`, wantErr: true},
		{name: "negative pressure", payload: `{"patient_id":"1234","kind":"blood_pressure","upper":-1,"lower":80}`, wantErr: true},
		{name: "unknown kind", payload: `{"patient_id":"1234","kind":"pulse"}`, wantErr: true},
		{name: "no patient", payload: `{"kind":"blood_pressure","upper":120,"lower":80}`, wantErr: true},
		{name: "garbage", payload: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1234", obs.PatientID)
			tt.check(t, obs)
		})
	}
}

func TestSubscriber_Handle(t *testing.T) {
	out := make(chan *domain.Observation, 1)
	s := NewSubscriber("vitals/#", out, zap.NewNop())

	s.Handle("vitals/1234/bp", []byte(`{"patient_id":"1234","kind":"blood_pressure","upper":120,"lower":80}`))
	require.Len(t, out, 1)

	// очередь полна, сообщение отбрасывается без блокировки
	s.Handle("vitals/1234/bp", []byte(`{"patient_id":"1234","kind":"blood_pressure","upper":130,"lower":80}`))
	assert.Len(t, out, 1)

	obs := <-out
	assert.Equal(t, 120, obs.BloodPressure.Upper)

	s.Handle("vitals/1234/bp", []byte(`{}`))
	assert.Len(t, out, 0)
}
