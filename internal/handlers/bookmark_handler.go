package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
}

func NewBookmarkHandler(bookmarkService *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

func (h *BookmarkHandler) Create(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateBookmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	bm, err := h.bookmarkService.Create(c.UserContext(), accountID, &req)
	if err != nil {
		var rejected *services.RejectedContentError
		switch {
		case errors.As(err, &rejected):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   true,
				"message": services.RejectionMessage(rejected.Reasons[0]),
				"field":   rejected.Field,
				"reasons": rejected.Reasons,
			})
		case errors.Is(err, services.ErrInvalidURL), errors.Is(err, services.ErrInvalidBookmark):
			return badRequest(c, err.Error())
		}
		reportInternal(c, "bookmark create failed", err, "account_id", accountID.String())
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(bm)
}

func (h *BookmarkHandler) List(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookmarks, total, err := h.bookmarkService.List(c.UserContext(), accountID, limit, offset)
	if err != nil {
		reportInternal(c, "bookmark list failed", err, "account_id", accountID.String())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch bookmarks",
		})
	}

	return c.JSON(fiber.Map{
		"bookmarks": bookmarks,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *BookmarkHandler) Delete(c *fiber.Ctx) error {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		return unauthorized(c)
	}

	bookmarkID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid bookmark ID")
	}

	if err := h.bookmarkService.Delete(c.UserContext(), accountID, bookmarkID); err != nil {
		if errors.Is(err, services.ErrBookmarkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		reportInternal(c, "bookmark delete failed", err, "account_id", accountID.String())
		return internalError(c)
	}

	return c.JSON(fiber.Map{"message": "Bookmark deleted"})
}
