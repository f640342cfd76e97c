package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bcm-risk-service/internal/config"
	"github.com/spec-kit/bcm-risk-service/internal/events"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
)

// Mailer delivers a notification email.
type Mailer interface {
	Send(ctx context.Context, from string, to []string, subject, body string) error
}

// LogMailer writes outgoing mail to the log instead of an SMTP relay,
// the development backend.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs the logging mail backend.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, from string, to []string, subject, body string) error {
	m.logger.Info("outgoing email",
		zap.String("from", from),
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// NotificationService emails active admins whenever a risk is created or
// updated. Delivery failures are logged and swallowed so the write path
// never sees them.
type NotificationService struct {
	users  repository.UserRepository
	mailer Mailer
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(users repository.UserRepository, mailer Mailer, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{users: users, mailer: mailer, cfg: cfg, logger: logger}
}

// Register subscribes the service to risk change events.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventRiskCreated, s.HandleRiskChanged)
	dispatcher.Subscribe(events.EventRiskUpdated, s.HandleRiskChanged)
}

// HandleRiskChanged builds and sends the admin alert for a create or
// update event.
func (s *NotificationService) HandleRiskChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RiskChangedPayload)
	if !ok {
		s.logger.Warn("unexpected event payload", zap.String("type", string(event.Type)))
		return nil
	}

	recipients, err := s.users.ListActiveAdminEmails(ctx)
	if err != nil {
		s.logger.Warn("unable to load notification recipients", zap.Error(err))
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("%s %s: %s", s.cfg.SubjectPrefix, title(payload.Action), payload.DepartmentName)
	body := fmt.Sprintf(`A risk has been %s for department: %s

Expected Problem: %s
Severity: %s
Status: %s
Estimated Resolution: %s

Created by: %s
Created at: %s
`,
		payload.Action,
		payload.DepartmentName,
		payload.ExpectedProblem,
		payload.Severity.Label(),
		payload.Status.Label(),
		payload.Resolution,
		payload.CreatorName,
		payload.CreatedAt.Format("2006-01-02 15:04"),
	)

	if err := s.mailer.Send(ctx, s.cfg.EmailFrom, recipients, subject, body); err != nil {
		s.logger.Warn("notification email failed",
			zap.String("risk_id", event.RiskID),
			zap.Error(err))
	}
	return nil
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
