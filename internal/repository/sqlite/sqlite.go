package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"
	"github.com/CoolE88/patient-monitor-service/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

const schema = `CREATE TABLE IF NOT EXISTS patients (
	id                 TEXT PRIMARY KEY,
	first_name         TEXT NOT NULL,
	last_name          TEXT NOT NULL,
	birth_date         TEXT NOT NULL,
	normal_temperature TEXT NOT NULL,
	bp_upper           INTEGER NOT NULL,
	bp_lower           INTEGER NOT NULL
)`

// SQLiteRepository хранилище карточек в файле sqlite
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteRepository(ctx context.Context, path string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(500)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite store opened", zap.String("path", path))

	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, record *domain.PatientRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("add_patient").Observe(time.Since(start).Seconds())
	}()

	id := record.ID
	if id == "" {
		id = utils.NewUUID().String()
	}

	query := `INSERT INTO patients (id, first_name, last_name, birth_date, normal_temperature, bp_upper, bp_lower)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			birth_date = excluded.birth_date,
			normal_temperature = excluded.normal_temperature,
			bp_upper = excluded.bp_upper,
			bp_lower = excluded.bp_lower`

	_, err := r.db.ExecContext(ctx, query,
		id,
		record.FirstName,
		record.LastName,
		record.BirthDate.Format(dateLayout),
		record.HealthInfo.NormalTemperature.String(),
		record.HealthInfo.BloodPressure.Upper,
		record.HealthInfo.BloodPressure.Lower,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save patient: %w", err)
	}

	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("get_patient_by_id").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT id, first_name, last_name, birth_date, normal_temperature, bp_upper, bp_lower
		FROM patients WHERE id = ?`

	var (
		record      domain.PatientRecord
		birthDate   string
		temperature string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.FirstName,
		&record.LastName,
		&birthDate,
		&temperature,
		&record.HealthInfo.BloodPressure.Upper,
		&record.HealthInfo.BloodPressure.Lower,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if record.BirthDate, err = time.Parse(dateLayout, birthDate); err != nil {
		return nil, fmt.Errorf("failed to parse birth date %q: %w", birthDate, err)
	}
	if record.HealthInfo.NormalTemperature, err = decimal.NewFromString(temperature); err != nil {
		return nil, fmt.Errorf("failed to parse normal temperature %q: %w", temperature, err)
	}

	return &record, nil
}

func (r *SQLiteRepository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() {
	if err := r.db.Close(); err != nil {
		r.logger.Warn("Failed to close sqlite", zap.Error(err))
	}
}
