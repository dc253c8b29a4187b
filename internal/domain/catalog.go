package domain

import "time"

// ServiceCategory groups catalog services for browsing.
type ServiceCategory struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CatalogService is an orderable service in the catalog. Its flags drive
// ticket defaults: DefaultPriority seeds new tickets and RequiresApproval
// routes them into the approval gate.
type CatalogService struct {
	ID               string
	CategoryID       string
	Name             string
	Description      string
	RequiresApproval bool
	DefaultPriority  TicketPriority
	SLAHours         *int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
