package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// StaffTicketsHandler manages the staff side of the ticket lifecycle:
// workflow transitions, assignment, the approval gate and escalation.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	workflow    *service.WorkflowService
	assignments *service.AssignmentService
	approvals   *service.ApprovalService
	escalations *service.EscalationService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(
	tickets *service.TicketService,
	workflow *service.WorkflowService,
	assignments *service.AssignmentService,
	approvals *service.ApprovalService,
	escalations *service.EscalationService,
) *StaffTicketsHandler {
	return &StaffTicketsHandler{
		tickets:     tickets,
		workflow:    workflow,
		assignments: assignments,
		approvals:   approvals,
		escalations: escalations,
	}
}

// List GET /staff/tickets.
func (h *StaffTicketsHandler) List(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	input := parseTicketQuery(c)
	if agentID := c.Query("assigned_agent_id"); agentID != "" {
		input.AssignedAgentID = &agentID
	}
	if deptID := c.Query("department_id"); deptID != "" {
		input.DepartmentID = &deptID
	}
	tickets, total, err := h.tickets.ListForStaff(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:      dto.FromTickets(tickets),
		TotalCount: total,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}})
}

// Get GET /staff/tickets/:id, ticket plus full timeline.
func (h *StaffTicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetForStaff(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	timeline, err := h.tickets.Timeline(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":   dto.FromTicket(ticket),
		"timeline": dto.FromActivityEntries(timeline),
	}})
}

// GetByNumber GET /staff/tickets/number/:number.
func (h *StaffTicketsHandler) GetByNumber(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetByNumberForStaff(c.UserContext(), principal.User, c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Transition POST /staff/tickets/:id/status.
func (h *StaffTicketsHandler) Transition(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.workflow.Transition(c.UserContext(), actorFrom(principal), c.Params("id"), service.TransitionInput{
		To:              domain.TicketStatus(req.Status),
		Notes:           req.Notes,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AssignDepartment POST /staff/tickets/:id/assign-department.
func (h *StaffTicketsHandler) AssignDepartment(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}
	ticket, err := h.assignments.AssignDepartment(c.UserContext(), actorFrom(principal), c.Params("id"), req.DepartmentID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AssignAgent POST /staff/tickets/:id/assign-agent.
func (h *StaffTicketsHandler) AssignAgent(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	ticket, err := h.assignments.AssignAgent(c.UserContext(), actorFrom(principal), c.Params("id"), req.AgentID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Approve POST /staff/tickets/:id/approve.
func (h *StaffTicketsHandler) Approve(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	_ = c.BodyParser(&req)
	ticket, err := h.approvals.Approve(c.UserContext(), actorFrom(principal), c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reject POST /staff/tickets/:id/reject.
func (h *StaffTicketsHandler) Reject(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.approvals.Reject(c.UserContext(), actorFrom(principal), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Escalate POST /staff/tickets/:id/escalate.
func (h *StaffTicketsHandler) Escalate(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.escalations.Escalate(c.UserContext(), actorFrom(principal), c.Params("id"), req.Reason, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ChangePriority POST /staff/tickets/:id/priority.
func (h *StaffTicketsHandler) ChangePriority(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ChangePriority(c.UserContext(), actorFrom(principal), c.Params("id"), domain.TicketPriority(req.Priority))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

func staffPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}

func actorFrom(principal *auth.Principal) service.Actor {
	return service.Actor{ID: principal.User.ID, Role: principal.User.Role}
}
