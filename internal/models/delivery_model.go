package models

import "time"

// DeliveryRecord logs one delivery attempt for a scheduled post.
type DeliveryRecord struct {
	PostID       string    `json:"post_id"`
	DeliveredAt  time.Time `json:"delivered_at"`
	ErrorMessage string    `json:"error_message"`
}
