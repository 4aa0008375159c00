package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/domain"
	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	AddPatient(ctx context.Context, record *domain.PatientRecord) (string, error)
	GetPatient(ctx context.Context, id string) (*domain.PatientRecord, error)
	CheckBloodPressure(ctx context.Context, patientID string, observed domain.BloodPressure) (domain.CheckResult, error)
	CheckTemperature(ctx context.Context, patientID string, observed domain.Temperature) (domain.CheckResult, error)
	CheckDBConnection(ctx context.Context) error
}

type HTTPServer struct {
	server  *http.Server
	router  *mux.Router
	service Service
	logger  *zap.Logger
}

type temperatureRequest struct {
	Temperature decimal.NullDecimal `json:"temperature"`
}

func NewHTTPServer(addr string, service Service, logger *zap.Logger) *HTTPServer {
	router := mux.NewRouter()

	s := &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		router:  router,
		service: service,
		logger:  logger,
	}

	// Middleware регистрации
	router.Use(s.metricsMiddleware)
	router.Use(s.loggingMiddleware)

	// Маршруты
	router.HandleFunc("/health", s.healthCheck).Methods("GET")
	router.HandleFunc("/api/v1/patients", s.addPatient).Methods("POST")
	router.HandleFunc("/api/v1/patients/{id}", s.getPatient).Methods("GET")
	router.HandleFunc("/api/v1/patients/{id}/blood-pressure", s.checkBloodPressure).Methods("POST")
	router.HandleFunc("/api/v1/patients/{id}/temperature", s.checkTemperature).Methods("POST")

	// Метрики Prometheus
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// responseWriter для отслеживания статус кода и размера
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// middleware для сбора метрик HTTP запросов с использованием шаблона пути
func (s *HTTPServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		method := r.Method
		status := strconv.Itoa(rw.statusCode)

		// Шаблон пути вместо ID пациента, чтобы не раздувать кардинальность
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		metrics.HTTPRequests.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
		metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(rw.size))
	})
}

// middleware для логирования HTTP запросов
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("ip", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()),
			zap.Int("status", rw.statusCode),
			zap.Int("response_size", rw.size),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *HTTPServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CheckDBConnection(r.Context()); err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *HTTPServer) addPatient(w http.ResponseWriter, r *http.Request) {
	var record domain.PatientRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.service.AddPatient(r.Context(), &record)
	if err != nil {
		s.writeError(w, err, "Failed to add patient")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *HTTPServer) getPatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := s.service.GetPatient(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "Failed to get patient")
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *HTTPServer) checkBloodPressure(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var pressure domain.BloodPressure
	if err := json.NewDecoder(r.Body).Decode(&pressure); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.CheckBloodPressure(r.Context(), id, pressure)
	if err != nil {
		s.writeError(w, err, "Failed to check blood pressure")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) checkTemperature(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Temperature.Valid {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.service.CheckTemperature(r.Context(), id, req.Temperature.Decimal)
	if err != nil {
		s.writeError(w, err, "Failed to check temperature")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		s.logger.Error(msg, zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
