package models

type GalleryImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
