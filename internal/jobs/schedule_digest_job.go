package job

import (
	"log/slog"

	"github.com/postdeckhq/postdeck/internal/service"
)

// ScheduleDigestJob periodically logs schedule occupancy so an operator can
// see slot pressure building up before composing actions start failing.
type ScheduleDigestJob struct {
	sc service.SchedulerService
}

func NewScheduleDigestJob(sc service.SchedulerService) *ScheduleDigestJob {
	return &ScheduleDigestJob{sc: sc}
}

func (j *ScheduleDigestJob) Run() {
	posts := j.sc.ScheduledPosts()

	slot, ok := j.sc.NextAvailableSlot()
	if !ok {
		slog.Warn("schedule digest: no available time slots", "scheduled", len(posts))
		return
	}

	conflicts := j.sc.ConflictingPosts(slot)
	slog.Info("schedule digest",
		"scheduled", len(posts),
		"next_slot", slot,
		"conflicts_near_next", len(conflicts))
}
