package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"go.uber.org/zap"
)

type Monitor interface {
	CheckBloodPressure(ctx context.Context, patientID string, observed domain.BloodPressure) (domain.CheckResult, error)
	CheckTemperature(ctx context.Context, patientID string, observed domain.Temperature) (domain.CheckResult, error)
}

// Pool набор воркеров, которые разбирают очередь показаний и прогоняют их через монитор
type Pool struct {
	workers int
	monitor Monitor
	logger  *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewPool(monitor Monitor, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		monitor: monitor,
		workers: workers,
		logger:  logger,
	}
}

// Start запускает воркеров и сразу возвращается. Воркеры завершаются, когда закрыт
// канал, отменён ctx или вызван Stop.
func (p *Pool) Start(ctx context.Context, observations <-chan *domain.Observation) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.logger.Info("starting worker pool",
		zap.Int("workers", p.workers),
		zap.String("start_time", time.Now().Format(time.RFC3339)),
	)

	metrics.ActiveWorkers.Set(float64(p.workers))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			defer metrics.ActiveWorkers.Dec()
			p.run(ctx, workerID, observations)
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, workerID int, observations <-chan *domain.Observation) {
	p.logger.Debug("worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case obs, ok := <-observations:
			if !ok {
				p.logger.Info("observation channel closed, exiting worker",
					zap.Int("worker_id", workerID),
				)
				return
			}

			if ctx.Err() != nil {
				p.logger.Info("context cancelled, exiting worker",
					zap.Int("worker_id", workerID),
				)
				return
			}

			p.process(ctx, workerID, obs)

		case <-ctx.Done():
			p.logger.Info("context cancelled, exiting worker",
				zap.Int("worker_id", workerID),
			)
			return
		}
	}
}

func (p *Pool) process(ctx context.Context, workerID int, obs *domain.Observation) {
	metrics.ObservationsReceived.Inc()
	startTime := time.Now()

	result, err := p.Check(ctx, obs)
	if err != nil {
		metrics.ObservationsFailed.Inc()

		fields := []zap.Field{zap.Int("worker_id", workerID), zap.Error(err)}
		if obs != nil {
			fields = append(fields, zap.String("patient_id", obs.PatientID), zap.String("kind", string(obs.Kind)))
		}
		p.logger.Error("[Worker] failed to check observation", fields...)
		return
	}

	metrics.ObservationsProcessed.Inc()
	processingTime := time.Since(startTime)
	metrics.ObservationProcessingTime.Observe(processingTime.Seconds())

	p.logger.Debug("[Worker] observation checked",
		zap.Int("worker_id", workerID),
		zap.String("patient_id", obs.PatientID),
		zap.String("kind", string(obs.Kind)),
		zap.Bool("abnormal", result.Abnormal),
		zap.Duration("processing_time", processingTime),
	)
}

// Check отправляет показание в нужную проверку по его типу
func (p *Pool) Check(ctx context.Context, obs *domain.Observation) (domain.CheckResult, error) {
	if obs == nil {
		return domain.CheckResult{}, fmt.Errorf("%w: observation is nil", domain.ErrInvalidArgument)
	}

	switch obs.Kind {
	case domain.KindBloodPressure:
		return p.monitor.CheckBloodPressure(ctx, obs.PatientID, obs.BloodPressure)
	case domain.KindTemperature:
		return p.monitor.CheckTemperature(ctx, obs.PatientID, obs.Temperature)
	default:
		return domain.CheckResult{}, fmt.Errorf("%w: unknown vital kind %q", domain.ErrInvalidArgument, obs.Kind)
	}
}

// Stop аккуратная остановка пула
func (p *Pool) Stop() {
	p.logger.Info("stopping worker pool gracefully")
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait ждёт завершения всех воркеров
func (p *Pool) Wait() {
	p.wg.Wait()
	metrics.ActiveWorkers.Set(0)

	p.logger.Info("worker pool stopped",
		zap.String("stop_time", time.Now().Format(time.RFC3339)),
	)
}
