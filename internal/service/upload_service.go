package service

import (
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/postdeckhq/postdeck/pkg/utils"
)

type UploadService interface {
	// Add creates one upload entry per file, in input order. Every entry is
	// returned with its preview already resolvable, before any progress has
	// been made. Files that are not recognized as images come back in the
	// error state and never tick.
	Add(files []transfer.UploadFile) []models.ImageUpload
	Get(id string) (models.ImageUpload, bool)
	// Restore rebuilds already-complete entries from stored preview
	// references, for loading a draft whose original bytes are gone.
	Restore(previews []string) []string
	Close()
}

type UploadConfig struct {
	TickInterval time.Duration
	Step         int
}

type uploadService struct {
	cfg UploadConfig

	mu      sync.Mutex
	uploads map[string]*models.ImageUpload
	done    chan struct{}
	closed  bool
}

func NewUploadService(cfg UploadConfig) UploadService {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 500 * time.Millisecond
	}
	if cfg.Step <= 0 {
		cfg.Step = 10
	}
	return &uploadService{
		cfg:     cfg,
		uploads: make(map[string]*models.ImageUpload),
		done:    make(chan struct{}),
	}
}

func (s *uploadService) Add(files []transfer.UploadFile) []models.ImageUpload {
	snapshots := make([]models.ImageUpload, 0, len(files))

	for _, f := range files {
		id, err := gonanoid.New()
		if err != nil {
			slog.Error(err.Error())
			continue
		}

		entry := &models.ImageUpload{
			ID:       id,
			FileName: f.Name,
			FileSize: int64(len(f.Data)),
			Status:   models.UploadStatusUploading,
		}

		kind, err := utils.SniffImageType(f.Data)
		if err != nil {
			slog.Info("rejected upload", "file", f.Name, "reason", err.Error())
			entry.Status = models.UploadStatusError
		} else {
			entry.FileType = kind.MIME.Value
			entry.Preview = utils.DataURL(kind.MIME.Value, f.Data)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return snapshots
		}
		s.uploads[id] = entry
		snapshot := *entry
		s.mu.Unlock()

		if snapshot.Status == models.UploadStatusUploading {
			go s.tick(id)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots
}

// tick advances one entry until it completes, is removed, or the service
// shuts down. Entries are keyed by id, so ticking never depends on the
// position of other uploads.
func (s *uploadService) tick(id string) {
	ticker := time.NewTicker(s.cfg.TickInterval)
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
			u, ok := s.uploads[id]
			if !ok || u.Status != models.UploadStatusUploading {
				s.mu.Unlock()
				return
			}
			u.Progress += s.cfg.Step
			if u.Progress >= 100 {
				u.Progress = 100
				u.Status = models.UploadStatusComplete
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}

func (s *uploadService) Get(id string) (models.ImageUpload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.uploads[id]
	if !ok {
		return models.ImageUpload{}, false
	}
	return *u, true
}

func (s *uploadService) Restore(previews []string) []string {
	ids := make([]string, 0, len(previews))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ids
	}

	for _, preview := range previews {
		id, err := gonanoid.New()
		if err != nil {
			slog.Error(err.Error())
			continue
		}
		s.uploads[id] = &models.ImageUpload{
			ID:       id,
			FileName: "image",
			Preview:  preview,
			Status:   models.UploadStatusComplete,
			Progress: 100,
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *uploadService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
