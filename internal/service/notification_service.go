package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/events"
)

// NotificationService turns domain events into outbound notifications.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// EventTypes lists the events Notify acts on.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventReporterRegistered,
		events.EventIssueSubmitted,
		events.EventSessionStarted,
		events.EventSessionEnded,
	}
}

// Notify delivers the notifications for one event.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventReporterRegistered:
		n.logger.Info("ReporterRegistered", zap.String("email", event.Email), zap.Any("payload", event.Payload))
		n.sendEmailNotificationStub(ctx, event)
	case events.EventIssueSubmitted:
		n.logger.Info("IssueSubmitted", zap.String("email", event.Email), zap.Any("payload", event.Payload))
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventSessionStarted, events.EventSessionEnded:
		n.logger.Debug(string(event.Type), zap.String("email", event.Email), zap.Any("payload", event.Payload))
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Email),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("email", event.Email),
		zap.String("event_type", string(event.Type)))
}
