package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/service-desk/internal/api/dto"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/service"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		TicketNumber:   req.TicketNumber,
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		PriorityID:     req.PriorityID,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		AssignedTo:     req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{
		SearchText: c.Query("search"),
		CategoryID: c.Query("category_id"),
		PriorityID: c.Query("priority_id"),
		StatusID:   c.Query("status_id"),
	}
	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketListItem, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketListItem(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	detail, comments, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail, comments)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.StatusID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateAssignment PATCH /tickets/:id/assignment.
func (h *TicketsHandler) UpdateAssignment(c *fiber.Ctx) error {
	var req dto.UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateAssignment(c.UserContext(), c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), c.Params("id"), req.AuthorName, req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		Title:          ticket.Title,
		CategoryID:     ticket.CategoryID,
		PriorityID:     ticket.PriorityID,
		StatusID:       ticket.StatusID,
		RequesterName:  ticket.RequesterName,
		RequesterEmail: ticket.RequesterEmail,
		AssignedTo:     ticket.AssignedTo,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}

func ticketListItem(detail *domain.TicketDetail) dto.TicketListItem {
	return dto.TicketListItem{
		TicketSummary: ticketSummary(&detail.Ticket),
		CategoryName:  detail.CategoryName,
		PriorityName:  detail.PriorityName,
		PriorityLevel: detail.PriorityLevel,
		StatusName:    detail.StatusName,
		StatusClosed:  detail.StatusClosed,
		StatusRole:    detail.StatusRole,
	}
}

func ticketDetail(detail *domain.TicketDetail, comments []domain.Comment) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketListItem: ticketListItem(detail),
		Description:    detail.Description,
		Comments:       make([]dto.CommentResponse, 0, len(comments)),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, commentResponse(&comments[i]))
	}
	return resp
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		Body:       comment.Body,
		AuthorName: comment.AuthorName,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
