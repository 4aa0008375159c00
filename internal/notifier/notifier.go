// Package notifier содержит каналы доставки тревожных сообщений.
// Ошибки доставки логируются и считаются в метриках, вызывающему не возвращаются.
package notifier

import (
	"context"

	"github.com/CoolE88/patient-monitor-service/internal/metrics"

	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, message string)
}

// Log пишет тревогу в лог
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (n *Log) Send(_ context.Context, message string) {
	n.logger.Warn("ALERT", zap.String("message", message))
	metrics.AlertsSent.WithLabelValues("log").Inc()
}

// Multi рассылает одно сообщение по всем каналам по очереди
type Multi []Notifier

func (m Multi) Send(ctx context.Context, message string) {
	for _, n := range m {
		n.Send(ctx, message)
	}
}
