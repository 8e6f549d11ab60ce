package transfer

import (
	"time"

	"github.com/postdeckhq/postdeck/internal/models"
)

// UploadFile carries the raw bytes of one selected file.
type UploadFile struct {
	Name string
	Data []byte
}

type ContentUpdate struct {
	Content string `json:"content"`
}

type DraftLoad struct {
	DraftID string `json:"draft_id"`
}

type DescriptionUpdate struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ComposeState is the editor snapshot returned to clients.
type ComposeState struct {
	ActivePostID string                `json:"active_post_id"`
	Content      string                `json:"content"`
	CharCount    int                   `json:"char_count"`
	CharLimit    int                   `json:"char_limit"`
	Images       []models.ImageUpload  `json:"images"`
	IsValid      bool                  `json:"is_valid"`
	IsPublishing bool                  `json:"is_publishing"`
	PublishLabel string                `json:"publish_label"`
	DraftsCount  int                   `json:"drafts_count"`
	Analytics    *models.PostAnalytics `json:"analytics,omitempty"`
}

type DraftSummary struct {
	ID        string    `json:"id"`
	Preview   string    `json:"preview"`
	LastSaved time.Time `json:"last_saved"`
}
