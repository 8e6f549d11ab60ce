package queue

import (
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/service"
)

// Queue consumes delayed delivery tasks for scheduled posts. Delivery is
// simulated; when R2 is configured the post's previews are archived.
type Queue struct {
	r2 *service.R2Service

	mu      sync.Mutex
	history []models.DeliveryRecord
}

func NewQueue(r2 *service.R2Service) *Queue {
	return &Queue{r2: r2}
}

const TaskTypeDeliverPost = "deliver:post"

// maxHistory bounds the in-memory delivery log.
const maxHistory = 100

type DeliverPostPayload struct {
	PostID        string    `json:"post_id"`
	Content       string    `json:"content"`
	Images        []string  `json:"images"`
	ScheduledTime time.Time `json:"scheduled_time"`
}
