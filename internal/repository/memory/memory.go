package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/pkg/utils"
)

// Repository хранит карточки в памяти процесса. Наружу всегда отдаются копии,
// поэтому вызывающий не может изменить сохранённую норму.
type Repository struct {
	mu      sync.RWMutex
	records map[string]domain.PatientRecord
}

func NewRepository() *Repository {
	return &Repository{
		records: make(map[string]domain.PatientRecord),
	}
}

func (r *Repository) Add(ctx context.Context, record *domain.PatientRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	stored := *record
	if stored.ID == "" {
		stored.ID = utils.NewUUID().String()
	}

	r.mu.Lock()
	r.records[stored.ID] = stored
	r.mu.Unlock()

	return stored.ID, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	record, ok := r.records[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("patient %q: %w", id, domain.ErrNotFound)
	}
	return &record, nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (r *Repository) Close() {}
