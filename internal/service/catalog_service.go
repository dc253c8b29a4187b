package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/persistence"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// CatalogService manages departments, service categories and the orderable
// catalog. Single service reads go through a Redis cache because every ticket
// creation hits them.
type CatalogService struct {
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	services    repository.ServiceCatalogRepository
	users       repository.UserRepository
	cache       *persistence.Redis
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	ServiceRepo    repository.ServiceCatalogRepository
	UserRepo       repository.UserRepository
	Cache          *persistence.Redis
	CacheTTL       time.Duration
	Logger         *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		services:    deps.ServiceRepo,
		users:       deps.UserRepo,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		logger:      deps.Logger,
	}
}

// DepartmentInput carries create/update fields for a department.
type DepartmentInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// CategoryInput carries create/update fields for a category.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// CatalogServiceInput carries create/update fields for an orderable service.
type CatalogServiceInput struct {
	CategoryID       string
	Name             string
	Description      string
	RequiresApproval *bool
	DefaultPriority  domain.TicketPriority
	SLAHours         *int
	IsActive         *bool
}

// CreateDepartment registers a new department.
func (s *CatalogService) CreateDepartment(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("department name required", nil)
	}
	dept := &domain.Department{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// UpdateDepartment changes name, description or the active flag. Deactivation
// is the only removal: tickets keep referencing the row.
func (s *CatalogService) UpdateDepartment(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		dept.Name = name
	}
	if input.Description != "" {
		dept.Description = input.Description
	}
	if input.IsActive != nil {
		dept.IsActive = *input.IsActive
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments returns departments for routing pickers.
func (s *CatalogService) ListDepartments(ctx context.Context, activeOnly bool) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// ListAgents returns the active agents of a department, for assignment pickers.
func (s *CatalogService) ListAgents(ctx context.Context, departmentID string) ([]domain.User, error) {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": departmentID})
		}
		return nil, apperrors.MapError(err)
	}
	agents, err := s.users.ListAgentsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// CreateCategory registers a new browsing category.
func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.ServiceCategory, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}
	category := &domain.ServiceCategory{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory changes category fields, soft delete via is_active.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.ServiceCategory, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// ListCategories returns categories for catalog browsing.
func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.ServiceCategory, error) {
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// CreateService adds an orderable service under an existing category.
func (s *CatalogService) CreateService(ctx context.Context, input CatalogServiceInput) (*domain.CatalogService, error) {
	if strings.TrimSpace(input.Name) == "" || input.CategoryID == "" {
		return nil, apperrors.NewValidationError("service name and category_id required", nil)
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("category not found", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}

	priority := input.DefaultPriority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown default priority", map[string]any{"priority": priority})
	}

	svc := &domain.CatalogService{
		CategoryID:      input.CategoryID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		DefaultPriority: priority,
		SLAHours:        input.SLAHours,
		IsActive:        true,
	}
	if input.RequiresApproval != nil {
		svc.RequiresApproval = *input.RequiresApproval
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// UpdateService changes a catalog entry and drops its cached copy.
func (s *CatalogService) UpdateService(ctx context.Context, id string, input CatalogServiceInput) (*domain.CatalogService, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.CategoryID != "" && input.CategoryID != svc.CategoryID {
		if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("category not found", map[string]any{"category_id": input.CategoryID})
			}
			return nil, apperrors.MapError(err)
		}
		svc.CategoryID = input.CategoryID
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		svc.Name = name
	}
	if input.Description != "" {
		svc.Description = input.Description
	}
	if input.RequiresApproval != nil {
		svc.RequiresApproval = *input.RequiresApproval
	}
	if input.DefaultPriority != "" {
		if !domain.ValidPriority(input.DefaultPriority) {
			return nil, apperrors.NewValidationError("unknown default priority", map[string]any{"priority": input.DefaultPriority})
		}
		svc.DefaultPriority = input.DefaultPriority
	}
	if input.SLAHours != nil {
		svc.SLAHours = input.SLAHours
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateServiceCache(ctx, svc.ID)
	return svc, nil
}

// GetService reads a catalog entry through the cache.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.CatalogService, error) {
	if cached := s.cachedService(ctx, id); cached != nil {
		return cached, nil
	}

	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	s.cacheService(ctx, svc)
	return svc, nil
}

// ListServices returns the orderable services of one category.
func (s *CatalogService) ListServices(ctx context.Context, categoryID string, activeOnly bool) ([]domain.CatalogService, error) {
	services, err := s.services.ListByCategory(ctx, categoryID, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return services, nil
}

func serviceCacheKey(id string) string {
	return fmt.Sprintf("catalog:service:%s", id)
}

func (s *CatalogService) cachedService(ctx context.Context, id string) *domain.CatalogService {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, serviceCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil
	}
	var svc domain.CatalogService
	if err := json.Unmarshal(raw, &svc); err != nil {
		return nil
	}
	return &svc
}

func (s *CatalogService) cacheService(ctx context.Context, svc *domain.CatalogService) {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(svc)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, serviceCacheKey(svc.ID), raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

func (s *CatalogService) invalidateServiceCache(ctx context.Context, id string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, serviceCacheKey(id)).Err(); err != nil && s.logger != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
