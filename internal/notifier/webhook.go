package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"go.uber.org/zap"
)

// Webhook отправляет {"text": message} POST-запросом
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (w *Webhook) Send(ctx context.Context, message string) {
	if err := w.post(ctx, message); err != nil {
		metrics.AlertsDeliveryFailed.WithLabelValues("webhook").Inc()
		w.logger.Error("Webhook delivery failed",
			zap.String("url", w.url),
			zap.Error(err))
		return
	}

	metrics.AlertsSent.WithLabelValues("webhook").Inc()
	w.logger.Debug("Webhook delivered", zap.String("url", w.url))
}

func (w *Webhook) post(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
