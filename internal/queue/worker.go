package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/postdeckhq/postdeck/internal/models"
)

func (q *Queue) HandleDeliverPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DeliverPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.DeliverPost(ctx, payload)
}

func (q *Queue) DeliverPost(ctx context.Context, payload DeliverPostPayload) error {
	slog.Info("delivering scheduled post",
		"post_id", payload.PostID,
		"images", len(payload.Images),
		"scheduled_time", payload.ScheduledTime)

	record := models.DeliveryRecord{
		PostID:      payload.PostID,
		DeliveredAt: time.Now(),
	}

	if q.r2 != nil && q.r2.Enabled() {
		post := models.Post{
			ID:      payload.PostID,
			Content: payload.Content,
			Images:  payload.Images,
			Status:  models.PostStatusPublished,
		}
		if err := q.r2.ArchivePost(ctx, post); err != nil {
			record.ErrorMessage = err.Error()
			slog.Error("error archiving post media", "post_id", payload.PostID, "error", err)
		}
	}

	q.mu.Lock()
	q.history = append(q.history, record)
	if len(q.history) > maxHistory {
		q.history = q.history[len(q.history)-maxHistory:]
	}
	q.mu.Unlock()

	return nil
}

// History returns the recent delivery log, newest last.
func (q *Queue) History() []models.DeliveryRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.DeliveryRecord(nil), q.history...)
}
