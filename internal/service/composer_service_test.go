package service

import (
	"strings"
	"testing"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

type composerFixture struct {
	composer  ComposerService
	drafts    DraftService
	uploads   UploadService
	scheduler SchedulerService
	scheduled chan models.Post
	published chan models.Post
}

func newComposerFixture(t *testing.T, schedCfg models.ScheduleConfig, initial []models.Post) *composerFixture {
	t.Helper()

	f := &composerFixture{
		drafts:    NewDraftService(DraftConfig{Debounce: 20 * time.Millisecond, MaxDrafts: 10}),
		uploads:   NewUploadService(UploadConfig{TickInterval: 5 * time.Millisecond}),
		scheduler: NewSchedulerService(schedCfg),
		scheduled: make(chan models.Post, 1),
		published: make(chan models.Post, 1),
	}

	hooks := Hooks{
		OnPostScheduled: func(p models.Post) { f.scheduled <- p },
		OnPostPublished: func(p models.Post) { f.published <- p },
	}

	f.composer = NewComposerService(ComposerConfig{
		PublishLatency:    80 * time.Millisecond,
		AnalyticsInterval: 20 * time.Millisecond,
	}, f.drafts, f.uploads, f.scheduler, hooks, initial)

	t.Cleanup(func() {
		f.composer.Close()
		f.drafts.Close()
		f.uploads.Close()
	})
	return f
}

func defaultScheduleConfig() models.ScheduleConfig {
	return models.ScheduleConfig{
		TimeSlots:      []time.Time{slotT, slotT.Add(time.Hour)},
		MaxPostsPerDay: 5,
		Location:       time.UTC,
	}
}

func draftPost() models.Post {
	return models.Post{ID: "1", Content: "Test post content", Status: models.PostStatusDraft}
}

func waitForValid(t *testing.T, c ComposerService) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !c.IsValidPost() {
		if time.Now().After(deadline) {
			t.Fatal("post never became valid")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestContentTruncatedAtLimit(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent(strings.Repeat("a", 281))

	state := f.composer.State()
	if state.CharCount != 280 {
		t.Errorf("char count = %d, want 280", state.CharCount)
	}
	if !state.IsValid {
		t.Error("truncated content should be valid")
	}
}

func TestValidityGating(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("")
	if f.composer.IsValidPost() {
		t.Error("empty content reported valid")
	}
	if err := f.composer.Publish(); err != ErrInvalidPost {
		t.Errorf("Publish with empty content = %v, want ErrInvalidPost", err)
	}

	f.composer.SetContent("a")
	if !f.composer.IsValidPost() {
		t.Error("single rune content reported invalid")
	}

	f.composer.SetContent(strings.Repeat("a", 280))
	if !f.composer.IsValidPost() {
		t.Error("280 rune content reported invalid")
	}

	f.composer.AttachImages([]transfer.UploadFile{pngFile("a.png")})
	if f.composer.IsValidPost() {
		t.Error("post valid while an image is still uploading")
	}

	waitForValid(t, f.composer)
}

func TestErrorImageKeepsPostInvalid(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("hello")
	f.composer.AttachImages([]transfer.UploadFile{{Name: "x.txt", Data: []byte("nope")}})

	time.Sleep(100 * time.Millisecond)
	if f.composer.IsValidPost() {
		t.Error("post valid with an errored image")
	}
	if err := f.composer.Schedule(); err != ErrInvalidPost {
		t.Errorf("Schedule = %v, want ErrInvalidPost", err)
	}
}

func TestPublishEndToEnd(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("Hello world")
	if got := f.composer.State().CharCount; got != 11 {
		t.Fatalf("char count = %d, want 11", got)
	}

	if err := f.composer.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !f.composer.IsPublishing() {
		t.Error("isPublishing false while publish in flight")
	}
	if got := f.composer.State().PublishLabel; got != "Publishing..." {
		t.Errorf("label = %q, want Publishing...", got)
	}
	if err := f.composer.Publish(); err != ErrPublishInFlight {
		t.Errorf("re-entrant Publish = %v, want ErrPublishInFlight", err)
	}

	select {
	case post := <-f.published:
		if post.Content != "Hello world" {
			t.Errorf("content = %q, want Hello world", post.Content)
		}
		if post.Status != models.PostStatusPublished {
			t.Errorf("status = %q, want published", post.Status)
		}
		if post.ScheduledTime != nil {
			t.Error("published post carries a scheduledTime")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onPostPublished never fired")
	}

	if f.composer.IsPublishing() {
		t.Error("isPublishing stuck after publish")
	}
	if _, ok := f.composer.ActivePost(); ok {
		t.Error("active post not cleared after publish")
	}
	if f.composer.Content() != "" {
		t.Error("content not cleared after publish")
	}
}

func TestScheduleEndToEnd(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("Scheduled post content")
	if err := f.composer.Schedule(); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case post := <-f.scheduled:
		if post.Status != models.PostStatusScheduled {
			t.Errorf("status = %q, want scheduled", post.Status)
		}
		if post.ScheduledTime == nil || !post.ScheduledTime.Equal(slotT) {
			t.Errorf("scheduledTime = %v, want %v", post.ScheduledTime, slotT)
		}
		if post.Content != "Scheduled post content" {
			t.Errorf("content = %q", post.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("onPostScheduled never fired")
	}

	if _, ok := f.composer.ActivePost(); ok {
		t.Error("active post not cleared after scheduling")
	}
	if _, ok := f.scheduler.ScheduledSlots()[slotT.UnixMilli()]; !ok {
		t.Error("slot not committed in the scheduler")
	}
}

func TestScheduleWithoutSlotsKeepsState(t *testing.T) {
	f := newComposerFixture(t, models.ScheduleConfig{MaxPostsPerDay: 5, Location: time.UTC},
		[]models.Post{draftPost()})

	f.composer.SetContent("no room for this one")
	if err := f.composer.Schedule(); err != ErrNoSlotAvailable {
		t.Fatalf("Schedule = %v, want ErrNoSlotAvailable", err)
	}

	if _, ok := f.composer.ActivePost(); !ok {
		t.Error("active post lost after failed scheduling")
	}
	if f.composer.Content() != "no room for this one" {
		t.Error("content lost after failed scheduling")
	}
}

func TestAutoDraftOnContentChange(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("Draft content")
	time.Sleep(100 * time.Millisecond)

	d, ok := f.drafts.GetDraft("1")
	if !ok {
		t.Fatal("auto-draft never committed")
	}
	if d.Content != "Draft content" {
		t.Errorf("content = %q, want Draft content", d.Content)
	}
}

func TestLoadDraftRestoresCompleteImages(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.drafts.SaveDraft("d1", "Hello from draft", []string{"data:image/png;base64,aGk="})
	time.Sleep(100 * time.Millisecond)

	if !f.composer.LoadDraft("d1") {
		t.Fatal("LoadDraft failed")
	}
	if f.composer.Content() != "Hello from draft" {
		t.Errorf("content = %q", f.composer.Content())
	}

	images := f.composer.Images()
	if len(images) != 1 {
		t.Fatalf("len(images) = %d, want 1", len(images))
	}
	if images[0].Status != models.UploadStatusComplete || images[0].Progress != 100 {
		t.Errorf("restored image = %q/%d, want complete/100", images[0].Status, images[0].Progress)
	}
	if !f.composer.IsValidPost() {
		t.Error("post with restored images reported invalid")
	}

	if f.composer.LoadDraft("missing") {
		t.Error("LoadDraft succeeded for an unknown draft")
	}
}

func TestAnalyticsCreatedLazily(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	if _, ok := f.composer.Analytics("1"); ok {
		t.Fatal("analytics entry exists for a draft post")
	}

	f.composer.SetContent("Hello world")
	if err := f.composer.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-f.published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never completed")
	}

	a, ok := f.composer.Analytics("1")
	if !ok {
		t.Fatal("analytics entry missing after publish")
	}
	if a.Views != 0 || a.Likes != 0 || a.Shares != 0 || a.Engagement != 0 {
		t.Errorf("analytics not zero-initialized: %+v", a)
	}
}

func TestAnalyticsTickForPublishedActivePost(t *testing.T) {
	published := models.Post{ID: "pub", Content: "live", Status: models.PostStatusPublished}
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{published})

	if _, ok := f.composer.Analytics("pub"); !ok {
		t.Fatal("analytics entry missing for published active post")
	}

	deadline := time.Now().Add(2 * time.Second)
	var a models.PostAnalytics
	for {
		a, _ = f.composer.Analytics("pub")
		if a.Views+a.Likes+a.Shares > 0 || a.Engagement != 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("analytics never advanced: %+v", a)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if a.Engagement < 0 || a.Engagement >= 1 {
		t.Errorf("engagement = %f, want [0,1)", a.Engagement)
	}
}

func TestCloseCancelsInFlightPublish(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("never published")
	if err := f.composer.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	f.composer.Close()

	select {
	case <-f.published:
		t.Fatal("publish callback fired after close")
	case <-time.After(300 * time.Millisecond):
	}

	if f.composer.IsPublishing() {
		t.Error("isPublishing stuck after close")
	}
}

func TestActionsRequireActivePost(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), nil)

	f.composer.SetContent("orphan content")
	if err := f.composer.Publish(); err != ErrNoActivePost {
		t.Errorf("Publish = %v, want ErrNoActivePost", err)
	}
	if err := f.composer.Schedule(); err != ErrNoActivePost {
		t.Errorf("Schedule = %v, want ErrNoActivePost", err)
	}
}

func TestNewPostOpensWorkableSession(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), nil)

	post, err := f.composer.NewPost()
	if err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	if post.ID == "" || post.Status != models.PostStatusDraft {
		t.Fatalf("post = %+v, want a draft with an id", post)
	}
	if state := f.composer.State(); state.ActivePostID != post.ID {
		t.Errorf("active post = %q, want %q", state.ActivePostID, post.ID)
	}

	f.composer.SetContent("First post")
	if err := f.composer.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-f.published:
		if got.ID != post.ID {
			t.Errorf("published id = %q, want %q", got.ID, post.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publish never completed")
	}
}

func TestNewPostReplacesEditingState(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("old content")
	post, err := f.composer.NewPost()
	if err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	if f.composer.Content() != "" {
		t.Errorf("content = %q, want empty", f.composer.Content())
	}
	active, ok := f.composer.ActivePost()
	if !ok || active.ID != post.ID {
		t.Errorf("active post = %+v (%v), want %q", active, ok, post.ID)
	}
}

func TestLoadDraftResumesPost(t *testing.T) {
	f := newComposerFixture(t, defaultScheduleConfig(), []models.Post{draftPost()})

	f.composer.SetContent("Saved for later")
	time.Sleep(100 * time.Millisecond)

	if _, err := f.composer.NewPost(); err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	if !f.composer.LoadDraft("1") {
		t.Fatal("LoadDraft failed")
	}
	active, ok := f.composer.ActivePost()
	if !ok || active.ID != "1" {
		t.Fatalf("active post = %+v (%v), want 1", active, ok)
	}

	if err := f.composer.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-f.published:
		if got.Content != "Saved for later" {
			t.Errorf("published content = %q", got.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publish never completed")
	}
}
