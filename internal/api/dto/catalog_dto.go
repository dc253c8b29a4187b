package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// DepartmentRequest is the body for department create/update.
type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// CategoryRequest is the body for category create/update.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// ServiceRequest is the body for catalog service create/update.
type ServiceRequest struct {
	CategoryID       string `json:"category_id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	RequiresApproval *bool  `json:"requires_approval,omitempty"`
	DefaultPriority  string `json:"default_priority,omitempty"`
	SLAHours         *int   `json:"sla_hours,omitempty"`
	IsActive         *bool  `json:"is_active,omitempty"`
}

// DepartmentResponse is the public shape of a department.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryResponse is the public shape of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceResponse is the public shape of a catalog service.
type ServiceResponse struct {
	ID               string    `json:"id"`
	CategoryID       string    `json:"category_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	RequiresApproval bool      `json:"requires_approval"`
	DefaultPriority  string    `json:"default_priority"`
	SLAHours         *int      `json:"sla_hours,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FromDepartment maps the domain model.
func FromDepartment(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// FromDepartments maps a department slice.
func FromDepartments(depts []domain.Department) []DepartmentResponse {
	result := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		result = append(result, FromDepartment(&depts[i]))
	}
	return result
}

// FromCategory maps the domain model.
func FromCategory(c *domain.ServiceCategory) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromCategories maps a category slice.
func FromCategories(categories []domain.ServiceCategory) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, FromCategory(&categories[i]))
	}
	return result
}

// FromService maps the domain model.
func FromService(s *domain.CatalogService) ServiceResponse {
	return ServiceResponse{
		ID:               s.ID,
		CategoryID:       s.CategoryID,
		Name:             s.Name,
		Description:      s.Description,
		RequiresApproval: s.RequiresApproval,
		DefaultPriority:  string(s.DefaultPriority),
		SLAHours:         s.SLAHours,
		IsActive:         s.IsActive,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// FromServices maps a service slice.
func FromServices(services []domain.CatalogService) []ServiceResponse {
	result := make([]ServiceResponse, 0, len(services))
	for i := range services {
		result = append(result, FromService(&services[i]))
	}
	return result
}
