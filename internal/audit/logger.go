package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

// ZapAuditLogger writes audit events as structured log lines on a dedicated logger
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger creates an audit logger named "audit"
func NewZapAuditLogger(logger *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{logger: logging.OrNop(logger).Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (a *ZapAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.PhoneNumber != "" {
		fields = append(fields, zap.String("phone", logging.MaskPhone(event.PhoneNumber)))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		a.logger.Info("audit event", fields...)
		return
	}
	a.logger.Warn("audit event", fields...)
}

// Compile-time interface compliance verification
var _ domain.AuditLogger = (*ZapAuditLogger)(nil)
