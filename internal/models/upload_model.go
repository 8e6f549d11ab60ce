package models

type ImageUpload struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Preview  string `json:"preview"`
	Status   string `json:"status"` // uploading, complete, error
	Progress int    `json:"progress"`
}

const (
	UploadStatusUploading = "uploading"
	UploadStatusComplete  = "complete"
	UploadStatusError     = "error"
)
