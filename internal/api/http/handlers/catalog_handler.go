package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// CatalogHandler serves the browsable catalog plus the admin CRUD behind it.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// ListDepartments GET /catalog/departments.
func (h *CatalogHandler) ListDepartments(c *fiber.Ctx) error {
	activeOnly := c.Query("include_inactive") != "true"
	depts, err := h.service.ListDepartments(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartments(depts)})
}

// ListAgents GET /catalog/departments/:id/agents.
func (h *CatalogHandler) ListAgents(c *fiber.Ctx) error {
	agents, err := h.service.ListAgents(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(agents)})
}

// ListCategories GET /catalog/categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	activeOnly := c.Query("include_inactive") != "true"
	categories, err := h.service.ListCategories(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategories(categories)})
}

// ListServices GET /catalog/categories/:id/services.
func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	activeOnly := c.Query("include_inactive") != "true"
	services, err := h.service.ListServices(c.UserContext(), c.Params("id"), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromServices(services)})
}

// GetService GET /catalog/services/:id.
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	svc, err := h.service.GetService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromService(svc)})
}

// CreateDepartment POST /admin/departments.
func (h *CatalogHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromDepartment(dept)})
}

// UpdateDepartment PUT /admin/departments/:id.
func (h *CatalogHandler) UpdateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), c.Params("id"), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartment(dept)})
}

// CreateCategory POST /admin/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.CreateCategory(c.UserContext(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// UpdateCategory PUT /admin/categories/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromCategory(category)})
}

// CreateService POST /admin/services.
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	svc, err := h.service.CreateService(c.UserContext(), catalogServiceInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromService(svc)})
}

// UpdateService PUT /admin/services/:id.
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	svc, err := h.service.UpdateService(c.UserContext(), c.Params("id"), catalogServiceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromService(svc)})
}

func catalogServiceInput(req dto.ServiceRequest) service.CatalogServiceInput {
	return service.CatalogServiceInput{
		CategoryID:       req.CategoryID,
		Name:             req.Name,
		Description:      req.Description,
		RequiresApproval: req.RequiresApproval,
		DefaultPriority:  domain.TicketPriority(req.DefaultPriority),
		SLAHours:         req.SLAHours,
		IsActive:         req.IsActive,
	}
}
