package dto

import (
	"github.com/spec-kit/servicedesk/internal/service"
)

// StatusCountResponse is one status bucket.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// PriorityCountResponse is one priority bucket.
type PriorityCountResponse struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

// DepartmentWorkloadResponse summarizes one department.
type DepartmentWorkloadResponse struct {
	DepartmentID    string `json:"department_id"`
	DepartmentName  string `json:"department_name"`
	OpenTickets     int64  `json:"open_tickets"`
	ResolvedTickets int64  `json:"resolved_tickets"`
}

// OverviewResponse is the dashboard payload.
type OverviewResponse struct {
	ByStatus   []StatusCountResponse        `json:"by_status"`
	ByPriority []PriorityCountResponse      `json:"by_priority"`
	Workloads  []DepartmentWorkloadResponse `json:"department_workloads"`
}

// FromOverview maps the aggregate result.
func FromOverview(o *service.Overview) OverviewResponse {
	resp := OverviewResponse{
		ByStatus:   make([]StatusCountResponse, 0, len(o.ByStatus)),
		ByPriority: make([]PriorityCountResponse, 0, len(o.ByPriority)),
		Workloads:  make([]DepartmentWorkloadResponse, 0, len(o.Workloads)),
	}
	for _, entry := range o.ByStatus {
		resp.ByStatus = append(resp.ByStatus, StatusCountResponse{Status: entry.Status, Count: entry.Count})
	}
	for _, entry := range o.ByPriority {
		resp.ByPriority = append(resp.ByPriority, PriorityCountResponse{Priority: entry.Priority, Count: entry.Count})
	}
	for _, entry := range o.Workloads {
		resp.Workloads = append(resp.Workloads, DepartmentWorkloadResponse{
			DepartmentID:    entry.DepartmentID,
			DepartmentName:  entry.DepartmentName,
			OpenTickets:     entry.OpenTickets,
			ResolvedTickets: entry.ResolvedTickets,
		})
	}
	return resp
}
