package handlers

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/univertix/ouvidoria-backend/internal/anonid"
	"github.com/univertix/ouvidoria-backend/internal/config"
	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/middleware"
	"github.com/univertix/ouvidoria-backend/internal/models"
	"github.com/univertix/ouvidoria-backend/internal/services"
)

// trackFailureMessage is the single message for every tracking failure.
// Wrong access code and wrong secret must be indistinguishable.
const trackFailureMessage = "Complaint not found. Check your access code and secret."

type ComplaintHandler struct {
	service *services.ComplaintService
	db      *gorm.DB
	cfg     *config.Config
}

func NewComplaintHandler(service *services.ComplaintService, db *gorm.DB, cfg *config.Config) *ComplaintHandler {
	return &ComplaintHandler{service: service, db: db, cfg: cfg}
}

// SubmitAnonymous handles the public anonymous intake form.
func (h *ComplaintHandler) SubmitAnonymous(c *fiber.Ctx) error {
	var req dto.SubmitAnonymousRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.service.SubmitAnonymous(&req)
	if err != nil {
		if errors.Is(err, anonid.ErrInvalidSecret) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "A tracking secret is required. Supply one or request a generated secret.",
			})
		}
		if errors.Is(err, services.ErrInvalidComplaint) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register complaint",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Track handles the public tracking form. All failures share one status and
// one message.
func (h *ComplaintHandler) Track(c *fiber.Ctx) error {
	var req dto.TrackComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	view, err := h.service.Track(req.AccessCode, req.Secret)
	if err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: trackFailureMessage,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(view)
}

// Submit handles identified submissions; the owner comes from the JWT.
func (h *ComplaintHandler) Submit(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	view, err := h.service.Submit(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidComplaint) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to register complaint",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *ComplaintHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	views, total, err := h.service.ListMine(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load complaints",
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"complaints": views,
			"pagination": fiber.Map{
				"page":        page,
				"limit":       limit,
				"total":       total,
				"total_pages": (total + int64(limit) - 1) / int64(limit),
			},
		},
	})
}

func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid complaint id",
		})
	}

	view, err := h.service.Get(id, userID, middleware.IsAdminCaller(c, h.db, h.cfg))
	if err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(view)
}

// UploadAttachment stores a file under the upload dir and records metadata.
func (h *ComplaintHandler) UploadAttachment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	complaintID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid complaint id",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A file field is required",
		})
	}
	if file.Size > h.cfg.MaxAttachmentSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Error: true, Message: "Attachment too large",
		})
	}

	att := &models.ComplaintAttachment{
		ID:          uuid.New(),
		FileName:    filepath.Base(file.Filename),
		ContentType: file.Header.Get("Content-Type"),
		SizeBytes:   file.Size,
	}
	att.FilePath = filepath.Join(h.cfg.UploadDir, complaintID.String(), att.ID.String())

	if err := os.MkdirAll(filepath.Dir(att.FilePath), 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store attachment",
		})
	}
	if err := c.SaveFile(file, att.FilePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store attachment",
		})
	}

	if err := h.service.AddAttachment(complaintID, userID, middleware.IsAdminCaller(c, h.db, h.cfg), att); err != nil {
		os.Remove(att.FilePath)
		if errors.Is(err, services.ErrComplaintNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Complaint not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store attachment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(att)
}

func (h *ComplaintHandler) DownloadAttachment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	complaintID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid complaint id",
		})
	}
	attachmentID, err := uuid.Parse(c.Params("attachmentID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid attachment id",
		})
	}

	att, err := h.service.GetAttachment(complaintID, attachmentID, userID, middleware.IsAdminCaller(c, h.db, h.cfg))
	if err != nil {
		if errors.Is(err, services.ErrComplaintNotFound) || errors.Is(err, services.ErrAttachmentMissing) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Attachment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Download(att.FilePath, att.FileName)
}
