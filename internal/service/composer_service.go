package service

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

var (
	ErrNoActivePost    = errors.New("no active post to act on")
	ErrInvalidPost     = errors.New("post content or images are not valid")
	ErrNoSlotAvailable = errors.New("no available time slots")
	ErrScheduleRaced   = errors.New("time slot was taken before the post could be committed")
	ErrPublishInFlight = errors.New("a publish is already in progress")
)

// Hooks are the outbound callbacks toward the persistence/delivery layer.
// Each fires exactly once per successful terminal action, after editing
// state has been cleared.
type Hooks struct {
	OnPostScheduled func(models.Post)
	OnPostPublished func(models.Post)
}

type ComposerConfig struct {
	PublishLatency    time.Duration
	AnalyticsInterval time.Duration
}

// ComposerService owns the active editing session: the working content and
// image set, the publish gate, and the per-post analytics counters. It
// drives the draft store, the upload pipeline and the scheduler; none of
// them call back into it.
type ComposerService interface {
	// NewPost starts a fresh editing session on a new draft post,
	// replacing whatever was being edited.
	NewPost() (models.Post, error)
	SetContent(content string)
	Content() string
	AttachImages(files []transfer.UploadFile) []models.ImageUpload
	Images() []models.ImageUpload
	LoadDraft(draftID string) bool
	Schedule() error
	Publish() error
	IsValidPost() bool
	IsPublishing() bool
	ActivePost() (models.Post, bool)
	Analytics(postID string) (models.PostAnalytics, bool)
	State() transfer.ComposeState
	Close()
}

type composerService struct {
	cfg       ComposerConfig
	drafts    DraftService
	uploads   UploadService
	scheduler SchedulerService
	hooks     Hooks

	mu           sync.Mutex
	activePost   *models.Post
	content      string
	imageIDs     []string
	analytics    map[string]*models.PostAnalytics
	publishing   bool
	publishTimer *time.Timer
	rng          *rand.Rand
	done         chan struct{}
	closed       bool
}

func NewComposerService(
	cfg ComposerConfig,
	drafts DraftService,
	uploads UploadService,
	scheduler SchedulerService,
	hooks Hooks,
	initialPosts []models.Post) ComposerService {

	if cfg.PublishLatency <= 0 {
		cfg.PublishLatency = 2 * time.Second
	}
	if cfg.AnalyticsInterval <= 0 {
		cfg.AnalyticsInterval = 5 * time.Second
	}

	s := &composerService{
		cfg:       cfg,
		drafts:    drafts,
		uploads:   uploads,
		scheduler: scheduler,
		hooks:     hooks,
		analytics: make(map[string]*models.PostAnalytics),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		done:      make(chan struct{}),
	}

	if len(initialPosts) > 0 {
		post := initialPosts[0]
		s.activePost = &post
		s.content = post.Content
		if post.Status == models.PostStatusPublished {
			s.ensureAnalyticsLocked(post.ID)
		}
	}

	go s.analyticsLoop()
	return s
}

func (s *composerService) NewPost() (models.Post, error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return models.Post{}, err
	}
	post := models.Post{ID: id, Status: models.PostStatusDraft}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.activePost = &post
	s.content = ""
	s.imageIDs = nil
	return post, nil
}

func (s *composerService) SetContent(content string) {
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		content = string([]rune(content)[:models.MaxContentLength])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = content
	s.autosaveLocked()
}

func (s *composerService) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *composerService) AttachImages(files []transfer.UploadFile) []models.ImageUpload {
	snapshots := s.uploads.Add(files)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		s.imageIDs = append(s.imageIDs, snap.ID)
	}
	s.autosaveLocked()
	return snapshots
}

func (s *composerService) Images() []models.ImageUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imagesLocked()
}

func (s *composerService) imagesLocked() []models.ImageUpload {
	images := make([]models.ImageUpload, 0, len(s.imageIDs))
	for _, id := range s.imageIDs {
		if snap, ok := s.uploads.Get(id); ok {
			images = append(images, snap)
		}
	}
	return images
}

func (s *composerService) previewsLocked() []string {
	previews := make([]string, 0, len(s.imageIDs))
	for _, id := range s.imageIDs {
		if snap, ok := s.uploads.Get(id); ok {
			previews = append(previews, snap.Preview)
		}
	}
	return previews
}

// autosaveLocked pushes the working snapshot into the draft store. The
// store debounces the actual write, so this is fire-and-forget.
func (s *composerService) autosaveLocked() {
	if s.activePost == nil || s.content == "" {
		return
	}
	s.drafts.SaveDraft(s.activePost.ID, s.content, s.previewsLocked())
}

func (s *composerService) LoadDraft(draftID string) bool {
	draft, ok := s.drafts.GetDraft(draftID)
	if !ok {
		return false
	}

	ids := s.uploads.Restore(draft.Images)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = draft.Content
	s.imageIDs = ids
	// Drafts are keyed by post id, so loading one resumes that post.
	if s.activePost == nil || s.activePost.ID != draftID {
		s.activePost = &models.Post{ID: draftID, Status: models.PostStatusDraft}
	}
	s.autosaveLocked()
	return true
}

func (s *composerService) isValidLocked() bool {
	n := utf8.RuneCountInString(s.content)
	if n == 0 || n > models.MaxContentLength {
		return false
	}
	for _, id := range s.imageIDs {
		snap, ok := s.uploads.Get(id)
		if !ok || snap.Status != models.UploadStatusComplete {
			return false
		}
	}
	return true
}

func (s *composerService) IsValidPost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isValidLocked()
}

func (s *composerService) IsPublishing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publishing
}

func (s *composerService) Schedule() error {
	s.mu.Lock()

	if s.activePost == nil {
		s.mu.Unlock()
		return ErrNoActivePost
	}
	if !s.isValidLocked() {
		s.mu.Unlock()
		return ErrInvalidPost
	}

	slot, ok := s.scheduler.NextAvailableSlot()
	if !ok {
		s.mu.Unlock()
		slog.Error("no available time slots")
		return ErrNoSlotAvailable
	}

	finalized := *s.activePost
	finalized.Content = s.content
	finalized.Images = s.previewsLocked()

	if !s.scheduler.SchedulePost(finalized, slot) {
		s.mu.Unlock()
		slog.Warn("slot no longer available", "slot", slot)
		return ErrScheduleRaced
	}

	finalized.Status = models.PostStatusScheduled
	finalized.ScheduledTime = &slot
	s.clearEditingLocked()
	hook := s.hooks.OnPostScheduled
	s.mu.Unlock()

	if hook != nil {
		hook(finalized)
	}
	return nil
}

func (s *composerService) Publish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePost == nil {
		return ErrNoActivePost
	}
	if !s.isValidLocked() {
		return ErrInvalidPost
	}
	if s.publishing {
		return ErrPublishInFlight
	}

	finalized := *s.activePost
	finalized.Content = s.content
	finalized.Images = s.previewsLocked()
	finalized.Status = models.PostStatusPublished
	finalized.ScheduledTime = nil

	s.publishing = true
	s.publishTimer = time.AfterFunc(s.cfg.PublishLatency, func() {
		s.finishPublish(finalized)
	})
	return nil
}

func (s *composerService) finishPublish(finalized models.Post) {
	s.mu.Lock()
	// The gate is released no matter how the publish ends, so the action
	// can never stay stuck disabled.
	s.publishing = false

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.ensureAnalyticsLocked(finalized.ID)
	s.clearEditingLocked()
	hook := s.hooks.OnPostPublished
	s.mu.Unlock()

	if hook != nil {
		hook(finalized)
	}
}

func (s *composerService) clearEditingLocked() {
	s.activePost = nil
	s.content = ""
	s.imageIDs = nil
}

func (s *composerService) ensureAnalyticsLocked(postID string) *models.PostAnalytics {
	a, ok := s.analytics[postID]
	if !ok {
		a = &models.PostAnalytics{}
		s.analytics[postID] = a
	}
	return a
}

// analyticsLoop simulates telemetry arriving for the active published
// post. It never blocks editing and stops at teardown.
func (s *composerService) analyticsLoop() {
	ticker := time.NewTicker(s.cfg.AnalyticsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			if s.activePost != nil && s.activePost.Status == models.PostStatusPublished {
				a := s.ensureAnalyticsLocked(s.activePost.ID)
				a.Views += s.rng.Intn(10)
				a.Likes += s.rng.Intn(3)
				a.Shares += s.rng.Intn(2)
				a.Engagement = s.rng.Float64()
			}
			s.mu.Unlock()
		}
	}
}

func (s *composerService) ActivePost() (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePost == nil {
		return models.Post{}, false
	}
	return *s.activePost, true
}

func (s *composerService) Analytics(postID string) (models.PostAnalytics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.analytics[postID]
	if !ok {
		return models.PostAnalytics{}, false
	}
	return *a, true
}

func (s *composerService) State() transfer.ComposeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := transfer.ComposeState{
		Content:      s.content,
		CharCount:    utf8.RuneCountInString(s.content),
		CharLimit:    models.MaxContentLength,
		Images:       s.imagesLocked(),
		IsValid:      s.isValidLocked(),
		IsPublishing: s.publishing,
		PublishLabel: "Publish Now",
		DraftsCount:  s.drafts.Count(),
	}
	if s.publishing {
		state.PublishLabel = "Publishing..."
	}
	if s.activePost != nil {
		state.ActivePostID = s.activePost.ID
		if a, ok := s.analytics[s.activePost.ID]; ok {
			snapshot := *a
			state.Analytics = &snapshot
		}
	}
	return state
}

func (s *composerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.publishing = false
	if s.publishTimer != nil {
		s.publishTimer.Stop()
	}
	close(s.done)
}
