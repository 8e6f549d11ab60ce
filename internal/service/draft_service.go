package service

import (
	"sort"
	"sync"
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
)

// DraftEntry pairs a draft snapshot with the post id it is stored under.
type DraftEntry struct {
	ID    string
	Draft models.DraftAutoSave
}

type DraftService interface {
	// SaveDraft schedules a debounced write for the given id. Calls for the
	// same id within the debounce window collapse into one write carrying
	// the latest arguments; the window resets on each call.
	SaveDraft(id, content string, images []string)
	GetDraft(id string) (*models.DraftAutoSave, bool)
	// GetAllDrafts returns all snapshots, most recently saved first.
	GetAllDrafts() []DraftEntry
	DeleteDraft(id string)
	CurrentDraftID() string
	Count() int
	Close()
}

type DraftConfig struct {
	Debounce  time.Duration
	MaxDrafts int
}

type draftService struct {
	cfg DraftConfig

	mu     sync.Mutex
	drafts map[string]*models.DraftAutoSave
	timers map[string]*time.Timer
	// gens holds the id's pending write generation, drawn from genSeq so
	// values are never reused. An id has an entry only while a write is
	// in flight.
	gens      map[string]uint64
	genSeq    uint64
	currentID string
	closed    bool
}

func NewDraftService(cfg DraftConfig) DraftService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = time.Second
	}
	return &draftService{
		cfg:    cfg,
		drafts: make(map[string]*models.DraftAutoSave),
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

func (s *draftService) SaveDraft(id, content string, images []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.currentID = id

	imgs := make([]string, len(images))
	copy(imgs, images)

	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.genSeq++
	gen := s.genSeq
	s.gens[id] = gen
	s.timers[id] = time.AfterFunc(s.cfg.Debounce, func() {
		s.commit(id, content, imgs, gen)
	})
}

func (s *draftService) commit(id, content string, images []string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	// A timer that was superseded right as it fired must not clobber the
	// newer pending write.
	if s.gens[id] != gen {
		return
	}

	delete(s.timers, id)
	delete(s.gens, id)
	s.drafts[id] = &models.DraftAutoSave{
		Content:   content,
		Images:    images,
		LastSaved: time.Now(),
	}
	s.evict(id)
}

// evict removes the entries with the oldest lastSaved until the store is
// back at capacity. The just-written entry goes last, so it survives any
// capacity above zero.
func (s *draftService) evict(justWritten string) {
	max := s.cfg.MaxDrafts
	if max < 0 {
		max = 0
	}
	for len(s.drafts) > max {
		oldest := ""
		for id, d := range s.drafts {
			if id == justWritten {
				continue
			}
			if oldest == "" || d.LastSaved.Before(s.drafts[oldest].LastSaved) {
				oldest = id
			}
		}
		if oldest == "" {
			oldest = justWritten
		}
		delete(s.drafts, oldest)
	}
}

func (s *draftService) GetDraft(id string) (*models.DraftAutoSave, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	snapshot := *d
	return &snapshot, true
}

func (s *draftService) GetAllDrafts() []DraftEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]DraftEntry, 0, len(s.drafts))
	for id, d := range s.drafts {
		entries = append(entries, DraftEntry{ID: id, Draft: *d})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Draft.LastSaved.After(entries[j].Draft.LastSaved)
	})
	return entries
}

func (s *draftService) DeleteDraft(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	// Dropping the generation invalidates any write that already left its
	// timer.
	delete(s.gens, id)
	delete(s.drafts, id)

	if s.currentID == id {
		s.currentID = ""
	}
}

func (s *draftService) CurrentDraftID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

func (s *draftService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *draftService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
