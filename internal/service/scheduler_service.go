package service

import (
	"sort"
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
)

// conflictWindow is the proximity radius for getConflictingPosts.
const conflictWindow = time.Hour

type SchedulerService interface {
	IsTimeSlotAvailable(t time.Time) bool
	// NextAvailableSlot scans the configured slots in ascending order and
	// returns the first available one.
	NextAvailableSlot() (time.Time, bool)
	// SchedulePost re-validates the slot before committing, so a caller
	// holding a stale candidate gets a rejection instead of a double
	// booking.
	SchedulePost(post models.Post, t time.Time) bool
	UnschedulePost(id string)
	// ConflictingPosts returns every scheduled post within one hour of t,
	// in either direction, boundary included.
	ConflictingPosts(t time.Time) []models.Post
	ScheduledPosts() []models.Post
	// ScheduledSlots maps occupied slot timestamps (unix millis) to the
	// post occupying them.
	ScheduledSlots() map[int64]models.Post
}

type schedulerService struct {
	slots     []time.Time
	blackouts []models.BlackoutPeriod
	maxPerDay int
	loc       *time.Location

	mu        sync.Mutex
	scheduled []models.Post
}

func NewSchedulerService(cfg models.ScheduleConfig) SchedulerService {
	slots := make([]time.Time, len(cfg.TimeSlots))
	copy(slots, cfg.TimeSlots)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &schedulerService{
		slots:     slots,
		blackouts: append([]models.BlackoutPeriod(nil), cfg.BlackoutPeriods...),
		maxPerDay: cfg.MaxPostsPerDay,
		loc:       loc,
	}
}

func (s *schedulerService) IsTimeSlotAvailable(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAvailableLocked(t)
}

func (s *schedulerService) isAvailableLocked(t time.Time) bool {
	for _, p := range s.blackouts {
		if !t.Before(p.Start) && !t.After(p.End) {
			return false
		}
	}

	allowed := false
	for _, slot := range s.slots {
		if slot.Equal(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	y, m, d := t.In(s.loc).Date()
	sameDay := 0
	for _, post := range s.scheduled {
		if post.ScheduledTime == nil {
			continue
		}
		py, pm, pd := post.ScheduledTime.In(s.loc).Date()
		if py == y && pm == m && pd == d {
			sameDay++
		}
	}
	return sameDay < s.maxPerDay
}

func (s *schedulerService) NextAvailableSlot() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range s.slots {
		if s.isAvailableLocked(slot) {
			return slot, true
		}
	}
	return time.Time{}, false
}

func (s *schedulerService) SchedulePost(post models.Post, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAvailableLocked(t) {
		return false
	}

	slot := t
	post.Status = models.PostStatusScheduled
	post.ScheduledTime = &slot
	s.scheduled = append(s.scheduled, post)
	return true
}

func (s *schedulerService) UnschedulePost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.scheduled {
		if s.scheduled[i].ID == id {
			s.scheduled[i].Status = models.PostStatusDraft
			s.scheduled[i].ScheduledTime = nil
		}
	}
}

func (s *schedulerService) ConflictingPosts(t time.Time) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conflicts []models.Post
	for _, post := range s.scheduled {
		if post.ScheduledTime == nil {
			continue
		}
		d := post.ScheduledTime.Sub(t)
		if d < 0 {
			d = -d
		}
		if d <= conflictWindow {
			conflicts = append(conflicts, clonePost(post))
		}
	}
	return conflicts
}

func (s *schedulerService) ScheduledPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]models.Post, 0, len(s.scheduled))
	for _, post := range s.scheduled {
		posts = append(posts, clonePost(post))
	}
	return posts
}

// clonePost detaches the ScheduledTime pointer so callers cannot write
// through a snapshot into committed state.
func clonePost(p models.Post) models.Post {
	if p.ScheduledTime != nil {
		t := *p.ScheduledTime
		p.ScheduledTime = &t
	}
	return p
}

func (s *schedulerService) ScheduledSlots() map[int64]models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make(map[int64]models.Post, len(s.scheduled))
	for _, post := range s.scheduled {
		if post.ScheduledTime != nil {
			slots[post.ScheduledTime.UnixMilli()] = clonePost(post)
		}
	}
	return slots
}

// DefaultTimeSlots generates hourly candidate slots starting at the top of
// the current hour, covering the given number of days.
func DefaultTimeSlots(days int) []time.Time {
	if days <= 0 {
		days = 7
	}
	start := time.Now().Truncate(time.Hour)
	slots := make([]time.Time, 0, 24*days)
	for i := 0; i < 24*days; i++ {
		slots = append(slots, start.Add(time.Duration(i)*time.Hour))
	}
	return slots
}
