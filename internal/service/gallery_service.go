package service

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/internal/transfer"
	"github.com/postdeckhq/postdeck/pkg/utils"
)

type GalleryService interface {
	List() []models.GalleryImage
	Get(id string) (models.GalleryImage, bool)
	AddImage(file transfer.UploadFile) (models.GalleryImage, error)
	UpdateDescription(id, description string) error
}

type galleryService struct {
	mu     sync.Mutex
	order  []string
	images map[string]*models.GalleryImage
}

func NewGalleryService() GalleryService {
	s := &galleryService{images: make(map[string]*models.GalleryImage)}

	seeds := []models.GalleryImage{
		{URL: "https://source.unsplash.com/random/800x600?nature", Description: "Beautiful nature landscape"},
		{URL: "https://source.unsplash.com/random/800x600?city", Description: "Urban cityscape"},
		{URL: "https://source.unsplash.com/random/800x600?architecture", Description: "Modern architecture"},
	}
	for _, seed := range seeds {
		id, err := gonanoid.New()
		if err != nil {
			slog.Error(err.Error())
			continue
		}
		seed.ID = id
		img := seed
		s.images[id] = &img
		s.order = append(s.order, id)
	}
	return s
}

func (s *galleryService) List() []models.GalleryImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]models.GalleryImage, 0, len(s.order))
	for _, id := range s.order {
		images = append(images, *s.images[id])
	}
	return images
}

func (s *galleryService) Get(id string) (models.GalleryImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return models.GalleryImage{}, false
	}
	return *img, true
}

func (s *galleryService) AddImage(file transfer.UploadFile) (models.GalleryImage, error) {
	kind, err := utils.SniffImageType(file.Data)
	if err != nil {
		slog.Info(err.Error())
		return models.GalleryImage{}, err
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return models.GalleryImage{}, err
	}

	img := &models.GalleryImage{
		ID:          id,
		URL:         utils.DataURL(kind.MIME.Value, file.Data),
		Description: "New uploaded image",
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = img
	s.order = append(s.order, id)
	return *img, nil
}

func (s *galleryService) UpdateDescription(id, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		err := errors.New("description cannot be empty")
		slog.Info(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		err := errors.New("gallery image doesn't exist")
		slog.Info(err.Error())
		return err
	}
	img.Description = description
	return nil
}
