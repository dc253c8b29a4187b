package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ServiceCatalogRepository manages persistence for orderable catalog services.
type ServiceCatalogRepository interface {
	Create(ctx context.Context, svc *domain.CatalogService) error
	Update(ctx context.Context, svc *domain.CatalogService) error
	GetByID(ctx context.Context, id string) (*domain.CatalogService, error)
	ListByCategory(ctx context.Context, categoryID string, activeOnly bool) ([]domain.CatalogService, error)
}

type serviceCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewServiceCatalogRepository constructs repository.
func NewServiceCatalogRepository(pool *pgxpool.Pool) ServiceCatalogRepository {
	return &serviceCatalogRepository{pool: pool}
}

func (r *serviceCatalogRepository) Create(ctx context.Context, svc *domain.CatalogService) error {
	const query = `
        INSERT INTO service_catalog (category_id, name, description, requires_approval, default_priority, sla_hours, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		svc.CategoryID,
		svc.Name,
		svc.Description,
		svc.RequiresApproval,
		svc.DefaultPriority,
		svc.SLAHours,
		svc.IsActive,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
}

func (r *serviceCatalogRepository) Update(ctx context.Context, svc *domain.CatalogService) error {
	const query = `
        UPDATE service_catalog SET category_id=$1, name=$2, description=$3, requires_approval=$4,
            default_priority=$5, sla_hours=$6, is_active=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		svc.CategoryID,
		svc.Name,
		svc.Description,
		svc.RequiresApproval,
		svc.DefaultPriority,
		svc.SLAHours,
		svc.IsActive,
		svc.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceCatalogRepository) GetByID(ctx context.Context, id string) (*domain.CatalogService, error) {
	const query = `
        SELECT id, category_id, name, description, requires_approval, default_priority, sla_hours, is_active, created_at, updated_at
        FROM service_catalog WHERE id=$1`
	var svc domain.CatalogService
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.CategoryID,
		&svc.Name,
		&svc.Description,
		&svc.RequiresApproval,
		&svc.DefaultPriority,
		&svc.SLAHours,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceCatalogRepository) ListByCategory(ctx context.Context, categoryID string, activeOnly bool) ([]domain.CatalogService, error) {
	query := `
        SELECT id, category_id, name, description, requires_approval, default_priority, sla_hours, is_active, created_at, updated_at
        FROM service_catalog WHERE category_id=$1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogService
	for rows.Next() {
		var svc domain.CatalogService
		if err := rows.Scan(
			&svc.ID,
			&svc.CategoryID,
			&svc.Name,
			&svc.Description,
			&svc.RequiresApproval,
			&svc.DefaultPriority,
			&svc.SLAHours,
			&svc.IsActive,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
