package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusCount pairs a ticket status with its count.
type StatusCount struct {
	Status string
	Count  int64
}

// PriorityCount pairs a ticket priority with its count.
type PriorityCount struct {
	Priority string
	Count    int64
}

// DepartmentWorkload summarizes open work per department.
type DepartmentWorkload struct {
	DepartmentID    string
	DepartmentName  string
	OpenTickets     int64
	ResolvedTickets int64
}

// ReportsRepository runs the aggregate queries behind dashboards.
type ReportsRepository interface {
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByPriority(ctx context.Context) ([]PriorityCount, error)
	DepartmentWorkloads(ctx context.Context) ([]DepartmentWorkload, error)
}

type reportsRepository struct {
	pool *pgxpool.Pool
}

// NewReportsRepository constructs repository.
func NewReportsRepository(pool *pgxpool.Pool) ReportsRepository {
	return &reportsRepository{pool: pool}
}

func (r *reportsRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status ORDER BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var entry StatusCount
		if err := rows.Scan(&entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *reportsRepository) CountByPriority(ctx context.Context) ([]PriorityCount, error) {
	const query = `SELECT priority, COUNT(*) FROM tickets GROUP BY priority ORDER BY priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityCount
	for rows.Next() {
		var entry PriorityCount
		if err := rows.Scan(&entry.Priority, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *reportsRepository) DepartmentWorkloads(ctx context.Context) ([]DepartmentWorkload, error) {
	const query = `
        SELECT d.id, d.name,
               COUNT(t.id) FILTER (WHERE t.status NOT IN ('RESOLVED','CLOSED','CANCELLED','REJECTED')),
               COUNT(t.id) FILTER (WHERE t.status IN ('RESOLVED','CLOSED'))
        FROM departments d
        LEFT JOIN tickets t ON t.department_id = d.id
        GROUP BY d.id, d.name
        ORDER BY d.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DepartmentWorkload
	for rows.Next() {
		var entry DepartmentWorkload
		if err := rows.Scan(&entry.DepartmentID, &entry.DepartmentName, &entry.OpenTickets, &entry.ResolvedTickets); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
