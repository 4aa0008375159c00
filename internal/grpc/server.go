package grpc

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service описывает бизнес-логику, нужную gRPC слою
type Service interface {
	GetPatient(ctx context.Context, id string) (*domain.PatientRecord, error)
	CheckBloodPressure(ctx context.Context, patientID string, observed domain.BloodPressure) (domain.CheckResult, error)
	CheckTemperature(ctx context.Context, patientID string, observed domain.Temperature) (domain.CheckResult, error)
}

// GRPCServer реализует gRPC сервер с метриками и логированием
type GRPCServer struct {
	server  *grpc.Server
	service Service
	logger  *zap.Logger
}

func NewGRPCServer(service Service, logger *zap.Logger) *GRPCServer {
	loggingInterceptor := logging.UnaryServerInterceptor(interceptorLogger(logger))
	metricsInterceptor := grpc_prometheus.UnaryServerInterceptor
	customMetricsInterceptor := unaryMetricsInterceptor()

	chain := grpc.ChainUnaryInterceptor(
		loggingInterceptor,
		metricsInterceptor,
		customMetricsInterceptor,
	)

	s := &GRPCServer{
		server:  grpc.NewServer(chain),
		service: service,
		logger:  logger,
	}

	RegisterVitalsMonitorServer(s.server, s)

	grpc_prometheus.Register(s.server)
	grpc_prometheus.EnableHandlingTimeHistogram()

	return s
}

func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down gRPC server")

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}

// Custom metrics interceptor для детального отслеживания статусов и длительности с статусом
func unaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		statusCode := status.Code(err).String()
		duration := time.Since(start).Seconds()

		metrics.GRPCRequests.WithLabelValues(info.FullMethod, statusCode).Inc()
		metrics.GRPCRequestDuration.WithLabelValues(info.FullMethod, statusCode).Observe(duration)

		return resp, err
	}
}

// Logger adapter для grpc middleware
func interceptorLogger(l *zap.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		f := make([]zap.Field, 0, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			f = append(f, zap.Any(key, fields[i+1]))
		}
		logger := l.WithOptions(zap.AddCallerSkip(1)).With(f...)

		switch lvl {
		case logging.LevelDebug:
			logger.Debug(msg)
		case logging.LevelInfo:
			logger.Info(msg)
		case logging.LevelWarn:
			logger.Warn(msg)
		case logging.LevelError:
			logger.Error(msg)
		default:
			logger.Info(msg)
		}
	})
}

// toStatus переводит доменные ошибки в gRPC коды
func (s *GRPCServer) toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "patient not found")
	default:
		s.logger.Error(msg, zap.Error(err))
		return status.Error(codes.Internal, "failed to process request")
	}
}

func (s *GRPCServer) CheckBloodPressure(ctx context.Context, req *BloodPressureRequest) (*CheckResponse, error) {
	if req.PatientID == "" {
		return nil, status.Error(codes.InvalidArgument, "patient_id is required")
	}

	observed := domain.BloodPressure{Upper: int(req.Upper), Lower: int(req.Lower)}
	result, err := s.service.CheckBloodPressure(ctx, req.PatientID, observed)
	if err != nil {
		return nil, s.toStatus(err, "Failed to check blood pressure")
	}

	return toCheckResponse(result), nil
}

func (s *GRPCServer) CheckTemperature(ctx context.Context, req *TemperatureRequest) (*CheckResponse, error) {
	if req.PatientID == "" {
		return nil, status.Error(codes.InvalidArgument, "patient_id is required")
	}

	observed, err := domain.NewTemperature(req.Temperature)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid temperature format, expected decimal")
	}

	result, err := s.service.CheckTemperature(ctx, req.PatientID, observed)
	if err != nil {
		return nil, s.toStatus(err, "Failed to check temperature")
	}

	return toCheckResponse(result), nil
}

func (s *GRPCServer) GetPatient(ctx context.Context, req *PatientRequest) (*PatientResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	record, err := s.service.GetPatient(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(err, "Failed to get patient")
	}

	response := &PatientResponse{
		ID:                record.ID,
		FirstName:         record.FirstName,
		LastName:          record.LastName,
		BirthDate:         record.BirthDate.Format("2006-01-02"),
		NormalTemperature: record.HealthInfo.NormalTemperature.StringFixed(2),
	}
	response.BloodPressure.Upper = int32(record.HealthInfo.BloodPressure.Upper)
	response.BloodPressure.Lower = int32(record.HealthInfo.BloodPressure.Lower)

	return response, nil
}

func toCheckResponse(result domain.CheckResult) *CheckResponse {
	return &CheckResponse{
		PatientID: result.PatientID,
		Kind:      string(result.Kind),
		Abnormal:  result.Abnormal,
		Message:   result.Message,
	}
}
