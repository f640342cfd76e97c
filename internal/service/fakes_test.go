package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
	"github.com/spec-kit/bcm-risk-service/internal/events"
	"github.com/spec-kit/bcm-risk-service/internal/repository"
)

// fakeRiskRepo is an in-memory RiskRepository mirroring the SQL filter
// semantics: scoped equality filters, case-insensitive substring search,
// created_at DESC ordering and limit/offset pagination.
type fakeRiskRepo struct {
	mu    sync.Mutex
	seq   int
	clock time.Time
	risks map[string]*domain.Risk
}

func newFakeRiskRepo() *fakeRiskRepo {
	return &fakeRiskRepo{
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		risks: make(map[string]*domain.Risk),
	}
}

func (f *fakeRiskRepo) nextID() string {
	f.seq++
	return fmt.Sprintf("risk-%03d", f.seq)
}

func (f *fakeRiskRepo) Create(_ context.Context, risk *domain.Risk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	risk.ID = f.nextID()
	f.clock = f.clock.Add(time.Minute)
	risk.CreatedAt = f.clock
	risk.UpdatedAt = f.clock
	clone := *risk
	f.risks[risk.ID] = &clone
	return nil
}

func (f *fakeRiskRepo) Update(_ context.Context, risk *domain.Risk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.risks[risk.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	risk.CreatedAt = stored.CreatedAt
	risk.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	clone := *risk
	f.risks[risk.ID] = &clone
	return nil
}

func (f *fakeRiskRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.risks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.risks, id)
	return nil
}

func (f *fakeRiskRepo) GetByID(_ context.Context, id string) (*domain.Risk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	risk, ok := f.risks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *risk
	return &clone, nil
}

func (f *fakeRiskRepo) matches(risk *domain.Risk, filter repository.RiskFilter) bool {
	if filter.DepartmentID != nil && risk.DepartmentID != *filter.DepartmentID {
		return false
	}
	if filter.Severity != nil && risk.Severity != *filter.Severity {
		return false
	}
	if filter.Status != nil && risk.Status != *filter.Status {
		return false
	}
	if filter.Search != nil {
		needle := strings.ToLower(*filter.Search)
		notes := ""
		if risk.MitigationNotes != nil {
			notes = *risk.MitigationNotes
		}
		haystacks := []string{risk.ExpectedProblem, risk.Impact, notes}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeRiskRepo) filtered(filter repository.RiskFilter) []domain.Risk {
	var out []domain.Risk
	for _, risk := range f.risks {
		if f.matches(risk, filter) {
			out = append(out, *risk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeRiskRepo) ListWithFilter(_ context.Context, filter repository.RiskFilter) ([]domain.Risk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.filtered(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.Risk{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeRiskRepo) CountWithFilter(_ context.Context, filter repository.RiskFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(filter)), nil
}

func (f *fakeRiskRepo) Lock(_ context.Context, id, adminID string, lockedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	risk, ok := f.risks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	risk.IsLocked = true
	admin := adminID
	at := lockedAt
	risk.LockedBy = &admin
	risk.LockedAt = &at
	return nil
}

func (f *fakeRiskRepo) Unlock(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	risk, ok := f.risks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	risk.IsLocked = false
	risk.LockedBy = nil
	risk.LockedAt = nil
	return nil
}

type fakeDepartmentRepo struct {
	mu    sync.Mutex
	seq   int
	depts map[string]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{depts: make(map[string]*domain.Department)}
}

func (f *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	dept.ID = fmt.Sprintf("dept-%03d", f.seq)
	clone := *dept
	f.depts[dept.ID] = &clone
	return nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.depts[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *dept
	f.depts[dept.ID] = &clone
	return nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dept, ok := f.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *dept
	return &clone, nil
}

func (f *fakeDepartmentRepo) GetByCode(_ context.Context, code string) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dept := range f.depts {
		if dept.Code == code {
			clone := *dept
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartmentRepo) list(activeOnly bool) []domain.Department {
	var out []domain.Department
	for _, dept := range f.depts {
		if activeOnly && !dept.IsActive {
			continue
		}
		out = append(out, *dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeDepartmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(true), nil
}

func (f *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(false), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("user-%03d", f.seq)
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListActiveAdminEmails(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type entry struct{ username, email string }
	var entries []entry
	for _, user := range f.users {
		if user.Role == domain.RoleAdmin && user.IsActive && user.Email != "" {
			entries = append(entries, entry{user.Username, user.Email})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].username < entries[j].username })
	emails := make([]string, 0, len(entries))
	for _, e := range entries {
		emails = append(emails, e.email)
	}
	return emails, nil
}

// recordingDispatcher delivers synchronously and keeps every published
// event for assertions.
type recordingDispatcher struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{handlers: make(map[events.EventType][]events.EventHandler)}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	handlers := append([]events.EventHandler{}, d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.Event, len(d.events))
	copy(out, d.events)
	return out
}

// fakeMailer records sent messages.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	from    string
	to      []string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, from string, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{from: from, to: to, subject: subject, body: body})
	return nil
}
