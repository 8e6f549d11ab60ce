package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/service"
)

type ScheduleHandler struct {
	s service.SchedulerService
}

func NewScheduleHandler(s service.SchedulerService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

func (h *ScheduleHandler) ListScheduled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.s.ScheduledPosts())
}

func (h *ScheduleHandler) NextSlot(c *fiber.Ctx) error {
	slot, ok := h.s.NextAvailableSlot()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no available time slots",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"slot": slot})
}

func (h *ScheduleHandler) SlotAvailability(c *fiber.Ctx) error {
	t, err := parseTimeQuery(c, "time")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "time must be RFC3339",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"time":      t,
		"available": h.s.IsTimeSlotAvailable(t),
	})
}

func (h *ScheduleHandler) Conflicts(c *fiber.Ctx) error {
	t, err := parseTimeQuery(c, "time")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "time must be RFC3339",
		})
	}
	return c.Status(fiber.StatusOK).JSON(h.s.ConflictingPosts(t))
}

func (h *ScheduleHandler) Unschedule(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "post id is not valid",
		})
	}

	h.s.UnschedulePost(id)
	return c.SendStatus(fiber.StatusOK)
}
