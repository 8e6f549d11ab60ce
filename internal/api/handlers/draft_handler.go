package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

type DraftHandler struct {
	s service.DraftService
}

func NewDraftHandler(s service.DraftService) *DraftHandler {
	return &DraftHandler{s: s}
}

func (h *DraftHandler) ListDrafts(c *fiber.Ctx) error {
	entries := h.s.GetAllDrafts()

	summaries := make([]transfer.DraftSummary, 0, len(entries))
	for _, entry := range entries {
		preview := entry.Draft.Content
		if r := []rune(preview); len(r) > 50 {
			preview = string(r[:50])
		}
		summaries = append(summaries, transfer.DraftSummary{
			ID:        entry.ID,
			Preview:   preview,
			LastSaved: entry.Draft.LastSaved,
		})
	}

	return c.Status(fiber.StatusOK).JSON(summaries)
}

func (h *DraftHandler) RemoveDraft(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "draft id is not valid",
		})
	}

	h.s.DeleteDraft(id)
	return c.SendStatus(fiber.StatusOK)
}
