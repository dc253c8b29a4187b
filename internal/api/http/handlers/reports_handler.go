package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/service"
)

// ReportsHandler serves the admin dashboard aggregates.
type ReportsHandler struct {
	service *service.ReportsService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportsService *service.ReportsService) *ReportsHandler {
	return &ReportsHandler{service: reportsService}
}

// Dashboard GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromOverview(overview)})
}

// Departments GET /reports/departments.
func (h *ReportsHandler) Departments(c *fiber.Ctx) error {
	workloads, err := h.service.DepartmentWorkloads(c.UserContext())
	if err != nil {
		return err
	}
	result := make([]dto.DepartmentWorkloadResponse, 0, len(workloads))
	for _, entry := range workloads {
		result = append(result, dto.DepartmentWorkloadResponse{
			DepartmentID:    entry.DepartmentID,
			DepartmentName:  entry.DepartmentName,
			OpenTickets:     entry.OpenTickets,
			ResolvedTickets: entry.ResolvedTickets,
		})
	}
	return c.JSON(fiber.Map{"data": result})
}
