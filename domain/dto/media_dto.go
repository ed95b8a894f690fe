package dto

import "my-site/domain/model"

// MediaFolderResponse is returned by GET /api/media/:folder
type MediaFolderResponse struct {
	Folder     string            `json:"folder"`
	Photos     []model.MediaFile `json:"photos"`
	Videos     []model.MediaFile `json:"videos"`
	TotalFiles int               `json:"totalFiles"`
}

// ErrorResponse is the generic error body used outside the feed envelope
type ErrorResponse struct {
	Error string `json:"error"`
}
