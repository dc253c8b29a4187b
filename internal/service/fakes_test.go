package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
)

// fakeTicketRepo keeps tickets in memory and records every activity entry
// written through UpdateWithActivity. Setting failNextUpdate simulates a
// concurrent writer winning the version race.
type fakeTicketRepo struct {
	tickets        map[string]*domain.Ticket
	activity       []domain.ActivityEntry
	seq            int
	failNextUpdate error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.Version = 1
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	stored, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeTicketRepo) GetByTicketNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	for _, stored := range f.tickets {
		if stored.TicketNumber == number {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	return f.store(ticket)
}

func (f *fakeTicketRepo) UpdateWithActivity(ctx context.Context, ticket *domain.Ticket, entry *domain.ActivityEntry) error {
	if f.failNextUpdate != nil {
		err := f.failNextUpdate
		f.failNextUpdate = nil
		return err
	}
	if err := f.store(ticket); err != nil {
		return err
	}
	f.appendEntry(entry)
	return nil
}

func (f *fakeTicketRepo) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	var result []domain.Ticket
	for _, stored := range f.tickets {
		if filter.RequesterID != nil && stored.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.DepartmentID != nil {
			if stored.DepartmentID == nil || *stored.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !statusIn(stored.Status, filter.Statuses) {
			continue
		}
		result = append(result, *stored)
	}
	return result, int64(len(result)), nil
}

func (f *fakeTicketRepo) store(ticket *domain.Ticket) error {
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = time.Now()
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) appendEntry(entry *domain.ActivityEntry) {
	f.seq++
	entry.ID = fmt.Sprintf("entry-%d", f.seq)
	entry.CreatedAt = time.Now()
	f.activity = append(f.activity, *entry)
}

func (f *fakeTicketRepo) entriesFor(ticketID string) []domain.ActivityEntry {
	var result []domain.ActivityEntry
	for _, entry := range f.activity {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result
}

// fakeActivityRepo shares storage with the ticket repo so timelines include
// entries from both write paths.
type fakeActivityRepo struct {
	tickets *fakeTicketRepo
}

func (f *fakeActivityRepo) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	f.tickets.appendEntry(entry)
	return nil
}

func (f *fakeActivityRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityEntry, error) {
	return f.tickets.entriesFor(ticketID), nil
}

type fakeDepartmentRepo struct {
	departments map[string]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[string]*domain.Department)}
}

func (f *fakeDepartmentRepo) Create(ctx context.Context, dept *domain.Department) error {
	if dept.ID == "" {
		dept.ID = fmt.Sprintf("dept-%d", len(f.departments)+1)
	}
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	copied := *dept
	f.departments[dept.ID] = &copied
	return nil
}

func (f *fakeDepartmentRepo) Update(ctx context.Context, dept *domain.Department) error {
	if _, ok := f.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *dept
	f.departments[dept.ID] = &copied
	return nil
}

func (f *fakeDepartmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	dept, ok := f.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *dept
	return &copied, nil
}

func (f *fakeDepartmentRepo) List(ctx context.Context, activeOnly bool) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range f.departments {
		if activeOnly && !dept.IsActive {
			continue
		}
		result = append(result, *dept)
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ListAgentsByDepartment(ctx context.Context, departmentID string) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		if user.Role == domain.RoleAgent && user.Active && user.DepartmentID != nil && *user.DepartmentID == departmentID {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.ServiceCategory
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*domain.ServiceCategory)}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *domain.ServiceCategory) error {
	if category.ID == "" {
		category.ID = fmt.Sprintf("cat-%d", len(f.categories)+1)
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *domain.ServiceCategory) error {
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.ServiceCategory, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *category
	return &copied, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.ServiceCategory, error) {
	var result []domain.ServiceCategory
	for _, category := range f.categories {
		if activeOnly && !category.IsActive {
			continue
		}
		result = append(result, *category)
	}
	return result, nil
}

type fakeServiceCatalogRepo struct {
	services map[string]*domain.CatalogService
}

func newFakeServiceCatalogRepo() *fakeServiceCatalogRepo {
	return &fakeServiceCatalogRepo{services: make(map[string]*domain.CatalogService)}
}

func (f *fakeServiceCatalogRepo) Create(ctx context.Context, svc *domain.CatalogService) error {
	if svc.ID == "" {
		svc.ID = fmt.Sprintf("svc-%d", len(f.services)+1)
	}
	copied := *svc
	f.services[svc.ID] = &copied
	return nil
}

func (f *fakeServiceCatalogRepo) Update(ctx context.Context, svc *domain.CatalogService) error {
	if _, ok := f.services[svc.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *svc
	f.services[svc.ID] = &copied
	return nil
}

func (f *fakeServiceCatalogRepo) GetByID(ctx context.Context, id string) (*domain.CatalogService, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeServiceCatalogRepo) ListByCategory(ctx context.Context, categoryID string, activeOnly bool) ([]domain.CatalogService, error) {
	var result []domain.CatalogService
	for _, svc := range f.services {
		if svc.CategoryID != categoryID {
			continue
		}
		if activeOnly && !svc.IsActive {
			continue
		}
		result = append(result, *svc)
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments []domain.TicketComment
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *domain.TicketComment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(f.comments)+1)
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	var result []domain.TicketComment
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
	handlers  map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{handlers: make(map[events.EventType][]events.EventHandler)}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	for _, handler := range d.handlers[event.Type] {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) eventsOf(eventType events.EventType) []events.Event {
	var result []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
