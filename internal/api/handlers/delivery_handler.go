package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/queue"
)

type DeliveryHandler struct {
	q *queue.Queue
}

func NewDeliveryHandler(q *queue.Queue) *DeliveryHandler {
	return &DeliveryHandler{q: q}
}

func (h *DeliveryHandler) ListDeliveries(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.q.History())
}
