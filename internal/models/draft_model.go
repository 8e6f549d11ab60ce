package models

import "time"

// DraftAutoSave is the last committed snapshot of an in-progress post,
// keyed by post id in the draft store.
type DraftAutoSave struct {
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	LastSaved time.Time `json:"last_saved"`
}
