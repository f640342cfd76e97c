package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bcm-risk-service/internal/config"
	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/events"
)

func notificationFixture(t *testing.T) (*NotificationService, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	cfg := config.NotificationConfig{EmailFrom: "noreply@bcm.com", SubjectPrefix: "BCM Risk"}
	return NewNotificationService(users, mailer, cfg, nil), users, mailer
}

func changedEvent(action string) events.Event {
	return events.Event{
		Type:   events.EventRiskCreated,
		RiskID: "risk-001",
		Payload: events.RiskChangedPayload{
			DepartmentName:  "Information Technology",
			ExpectedProblem: "Server failure during peak hours",
			Severity:        domain.SeverityCritical,
			Status:          domain.StatusOpen,
			Resolution:      "4 Hours",
			CreatorName:     "Tom Hardy",
			CreatedAt:       time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Action:          action,
		},
	}
}

func TestNotificationEmailsActiveAdmins(t *testing.T) {
	service, users, mailer := notificationFixture(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "admin", Email: "admin@bcm.com", Role: domain.RoleAdmin, IsActive: true}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "boss", Email: "boss@bcm.com", Role: domain.RoleAdmin, IsActive: true}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "former", Email: "gone@bcm.com", Role: domain.RoleAdmin, IsActive: false}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "noemail", Role: domain.RoleAdmin, IsActive: true}))
	require.NoError(t, users.Create(ctx, &domain.User{Username: "it_user", Email: "it@bcm.com", Role: domain.RoleDepartmentUser, IsActive: true}))

	require.NoError(t, service.HandleRiskChanged(ctx, changedEvent("created")))

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "noreply@bcm.com", mail.from)
	assert.Equal(t, []string{"admin@bcm.com", "boss@bcm.com"}, mail.to)
	assert.Equal(t, "BCM Risk Created: Information Technology", mail.subject)
	assert.Contains(t, mail.body, "A risk has been created for department: Information Technology")
	assert.Contains(t, mail.body, "Expected Problem: Server failure during peak hours")
	assert.Contains(t, mail.body, "Severity: Critical")
	assert.Contains(t, mail.body, "Status: Open")
	assert.Contains(t, mail.body, "Estimated Resolution: 4 Hours")
	assert.Contains(t, mail.body, "Created by: Tom Hardy")
	assert.Contains(t, mail.body, "Created at: 2026-03-14 09:30")
}

func TestNotificationSkipsWhenNoRecipients(t *testing.T) {
	service, _, mailer := notificationFixture(t)

	require.NoError(t, service.HandleRiskChanged(context.Background(), changedEvent("updated")))

	assert.Empty(t, mailer.sent)
}

func TestNotificationSwallowsMailerFailure(t *testing.T) {
	service, users, mailer := notificationFixture(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "admin", Email: "admin@bcm.com", Role: domain.RoleAdmin, IsActive: true}))
	mailer.err = errors.New("smtp down")

	// delivery failure never propagates to the write path
	assert.NoError(t, service.HandleRiskChanged(ctx, changedEvent("created")))
}

func TestNotificationIgnoresUnexpectedPayload(t *testing.T) {
	service, users, mailer := notificationFixture(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "admin", Email: "admin@bcm.com", Role: domain.RoleAdmin, IsActive: true}))

	event := events.Event{Type: events.EventRiskLocked, Payload: events.RiskLockPayload{Locked: true}}
	require.NoError(t, service.HandleRiskChanged(ctx, event))

	assert.Empty(t, mailer.sent)
}

func TestNotificationSubscribesToChangeEvents(t *testing.T) {
	service, users, mailer := notificationFixture(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{Username: "admin", Email: "admin@bcm.com", Role: domain.RoleAdmin, IsActive: true}))

	dispatcher := newRecordingDispatcher()
	service.Register(dispatcher)

	require.NoError(t, dispatcher.Publish(ctx, changedEvent("created")))
	updated := changedEvent("updated")
	updated.Type = events.EventRiskUpdated
	require.NoError(t, dispatcher.Publish(ctx, updated))

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "BCM Risk Updated: Information Technology", mailer.sent[1].subject)
}
