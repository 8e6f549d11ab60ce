package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

type ComposeHandler struct {
	s service.ComposerService
}

func NewComposeHandler(s service.ComposerService) *ComposeHandler {
	return &ComposeHandler{s: s}
}

func (h *ComposeHandler) GetState(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.s.State())
}

func (h *ComposeHandler) NewPost(c *fiber.Ctx) error {
	post, err := h.s.NewPost()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create post",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *ComposeHandler) UpdateContent(c *fiber.Ctx) error {
	var body transfer.ContentUpdate
	if err := c.BodyParser(&body); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse body",
		})
	}

	h.s.SetContent(body.Content)
	return c.Status(fiber.StatusOK).JSON(h.s.State())
}

func (h *ComposeHandler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files selected",
		})
	}

	uploads, err := readUploadFiles(files)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(h.s.AttachImages(uploads))
}

func (h *ComposeHandler) LoadDraft(c *fiber.Ctx) error {
	var body transfer.DraftLoad
	if err := c.BodyParser(&body); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse body",
		})
	}

	if !h.s.LoadDraft(body.DraftID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Draft doesn't exist",
		})
	}
	return c.Status(fiber.StatusOK).JSON(h.s.State())
}

func (h *ComposeHandler) SchedulePost(c *fiber.Ctx) error {
	switch err := h.s.Schedule(); {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Post scheduled successfully",
		})
	case errors.Is(err, service.ErrNoSlotAvailable), errors.Is(err, service.ErrScheduleRaced):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

func (h *ComposeHandler) PublishPost(c *fiber.Ctx) error {
	switch err := h.s.Publish(); {
	case err == nil:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "Publishing",
		})
	case errors.Is(err, service.ErrPublishInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
