package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/config"
	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"
	"github.com/CoolE88/patient-monitor-service/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const schema = `CREATE TABLE IF NOT EXISTS patients (
	id                 TEXT PRIMARY KEY,
	first_name         TEXT NOT NULL,
	last_name          TEXT NOT NULL,
	birth_date         DATE NOT NULL,
	normal_temperature NUMERIC(5, 2) NOT NULL,
	bp_upper           INTEGER NOT NULL,
	bp_lower           INTEGER NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresRepository(ctx context.Context, dbConfig config.DBConfig, logger *zap.Logger) (*PostgresRepository, error) {
	// Конфигурация пула
	config, err := pgxpool.ParseConfig(dbConfig.DBSource)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.MaxConns = int32(dbConfig.MaxDBConnections)
	config.MinConns = int32(dbConfig.MinDBConnections)
	config.MaxConnLifetime = dbConfig.MaxConnLifetime
	config.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// Запуск горутины для мониторинга соединений
	go monitorConnections(ctx, pool, logger)

	return &PostgresRepository{
		pool:   pool,
		logger: logger,
	}, nil
}

// monitorConnections периодически обновляет метрики соединений и завершается при отмене ctx
func monitorConnections(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping monitorConnections goroutine due to context cancellation")
			return
		case <-ticker.C:
			stats := pool.Stat()
			metrics.DBActiveConnections.Set(float64(stats.AcquiredConns()))
			metrics.DBIdleConnections.Set(float64(stats.IdleConns()))

			logger.Debug("Database connection stats",
				zap.Int("acquired", int(stats.AcquiredConns())),
				zap.Int("idle", int(stats.IdleConns())),
				zap.Int("max", int(stats.MaxConns())),
			)
		}
	}
}

// Add сохраняет карточку. Если ID уже есть, карточка перезаписывается.
func (r *PostgresRepository) Add(ctx context.Context, record *domain.PatientRecord) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
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
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			birth_date = EXCLUDED.birth_date,
			normal_temperature = EXCLUDED.normal_temperature,
			bp_upper = EXCLUDED.bp_upper,
			bp_lower = EXCLUDED.bp_lower
		RETURNING id`

	var insertedID string
	err := r.pool.QueryRow(ctx, query,
		id,
		record.FirstName,
		record.LastName,
		record.BirthDate,
		record.HealthInfo.NormalTemperature.String(),
		record.HealthInfo.BloodPressure.Upper,
		record.HealthInfo.BloodPressure.Lower,
	).Scan(&insertedID)
	if err != nil {
		return "", fmt.Errorf("failed to save patient: %w", err)
	}

	return insertedID, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("get_patient_by_id").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT id, first_name, last_name, birth_date, normal_temperature::text, bp_upper, bp_lower
		FROM patients WHERE id = $1`

	var (
		record      domain.PatientRecord
		temperature string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.FirstName,
		&record.LastName,
		&record.BirthDate,
		&temperature,
		&record.HealthInfo.BloodPressure.Upper,
		&record.HealthInfo.BloodPressure.Lower,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("patient %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	record.HealthInfo.NormalTemperature, err = decimal.NewFromString(temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse normal temperature %q: %w", temperature, err)
	}

	return &record, nil
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.DBQueryDuration.WithLabelValues("health_check").Observe(duration)
	}()

	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
