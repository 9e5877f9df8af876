package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// ReferenceHandler manages the category/priority/status enumerations.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// ListCategories GET /categories.
func (h *ReferenceHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /categories.
func (h *ReferenceHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	category, err := h.service.CreateCategory(c.UserContext(), req.Name, req.Description, req.Color)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// DeleteCategory DELETE /categories/:id.
func (h *ReferenceHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPriorities GET /priorities.
func (h *ReferenceHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.service.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		items = append(items, priorityResponse(&priorities[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreatePriority POST /priorities.
func (h *ReferenceHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.CreatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	priority, err := h.service.CreatePriority(c.UserContext(), req.Name, req.Level, req.Color)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": priorityResponse(priority)})
}

// DeletePriority DELETE /priorities/:id.
func (h *ReferenceHandler) DeletePriority(c *fiber.Ctx) error {
	if err := h.service.DeletePriority(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListStatuses GET /statuses.
func (h *ReferenceHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StatusResponse, 0, len(statuses))
	for i := range statuses {
		items = append(items, statusResponse(&statuses[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateStatus POST /statuses.
func (h *ReferenceHandler) CreateStatus(c *fiber.Ctx) error {
	var req dto.CreateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	status, err := h.service.CreateStatus(c.UserContext(), req.Name, req.SortOrder, req.Color, req.IsClosed, req.SemanticRole)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": statusResponse(status)})
}

// DeleteStatus DELETE /statuses/:id.
func (h *ReferenceHandler) DeleteStatus(c *fiber.Ctx) error {
	if err := h.service.DeleteStatus(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Color:       category.Color,
		CreatedAt:   category.CreatedAt,
	}
}

func priorityResponse(priority *domain.Priority) dto.PriorityResponse {
	return dto.PriorityResponse{
		ID:        priority.ID,
		Name:      priority.Name,
		Level:     priority.Level,
		Color:     priority.Color,
		CreatedAt: priority.CreatedAt,
	}
}

func statusResponse(status *domain.Status) dto.StatusResponse {
	return dto.StatusResponse{
		ID:           status.ID,
		Name:         status.Name,
		SortOrder:    status.SortOrder,
		Color:        status.Color,
		IsClosed:     status.IsClosed,
		SemanticRole: status.SemanticRole,
		CreatedAt:    status.CreatedAt,
	}
}
