package models

import "time"

type Post struct {
	ID            string         `json:"id"`
	Content       string         `json:"content"`
	Images        []string       `json:"images"`
	Status        string         `json:"status"` // draft, scheduled, published
	ScheduledTime *time.Time     `json:"scheduled_time,omitempty"`
	Analytics     *PostAnalytics `json:"analytics,omitempty"`
}

type PostAnalytics struct {
	Views      int     `json:"views"`
	Likes      int     `json:"likes"`
	Shares     int     `json:"shares"`
	Engagement float64 `json:"engagement"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// MaxContentLength is the hard cap on post content, in runes.
const MaxContentLength = 280
