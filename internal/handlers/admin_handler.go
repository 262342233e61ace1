package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/export"
	"github.com/univertix/ouvidoria-backend/internal/middleware"
	"github.com/univertix/ouvidoria-backend/internal/models"
	"github.com/univertix/ouvidoria-backend/internal/services"
)

type AdminHandler struct {
	service *services.ComplaintService
}

func NewAdminHandler(service *services.ComplaintService) *AdminHandler {
	return &AdminHandler{service: service}
}

// List returns complaints with optional ?status= and ?type= filters.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	status := c.Query("status")
	ctype := c.Query("type")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if status != "" && !models.ValidStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid status filter",
		})
	}
	if ctype != "" && !models.ValidType(ctype) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid type filter",
		})
	}

	complaints, total, err := h.service.AdminList(status, ctype, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load complaints",
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"complaints": complaints,
			"pagination": fiber.Map{
				"page":        page,
				"limit":       limit,
				"total":       total,
				"total_pages": (total + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		// admin-token callers have no JWT subject
		adminID = uuid.Nil
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid complaint id",
		})
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.service.UpdateStatus(id, adminID, req.Status); err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update complaint",
		})
	}

	return c.JSON(fiber.Map{"message": "Status updated"})
}

func (h *AdminHandler) Respond(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		adminID = uuid.Nil
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid complaint id",
		})
	}

	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.service.Respond(id, adminID, req.Response); err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Response recorded"})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load stats",
		})
	}
	return c.JSON(stats)
}

// Export streams the filtered complaint list as CSV or PDF.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	format := c.Query("format", "csv")
	status := c.Query("status")
	ctype := c.Query("type")

	// exports are unpaginated; cap at a generous page
	complaints, _, err := h.service.AdminList(status, ctype, 1, 10000)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load complaints",
		})
	}

	stamp := time.Now().Format("2006-01-02")
	switch format {
	case "csv":
		out, err := export.CSV(complaints)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to render export",
			})
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="complaints_%s.csv"`, stamp))
		return c.Send(out)
	case "pdf":
		out, err := export.PDF(complaints)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to render export",
			})
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="complaints_%s.pdf"`, stamp))
		return c.Send(out)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Unsupported format: " + format,
		})
	}
}
