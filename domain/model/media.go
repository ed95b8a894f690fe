package model

import (
	"strings"
	"time"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaFile describes one file of an event gallery folder
type MediaFile struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Extension    string    `json:"extension"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	Type         MediaType `json:"type"`
}

var mediaExtensions = map[string]MediaType{
	"jpg":  MediaTypeImage,
	"jpeg": MediaTypeImage,
	"png":  MediaTypeImage,
	"gif":  MediaTypeImage,
	"webp": MediaTypeImage,
	"bmp":  MediaTypeImage,
	"tiff": MediaTypeImage,
	"mp4":  MediaTypeVideo,
	"mov":  MediaTypeVideo,
	"avi":  MediaTypeVideo,
	"mkv":  MediaTypeVideo,
	"webm": MediaTypeVideo,
	"flv":  MediaTypeVideo,
	"wmv":  MediaTypeVideo,
}

// ClassifyMedia maps a file name to its gallery type by extension, case-insensitively.
// It returns the extension without the dot; ok is false for files the gallery does not show.
func ClassifyMedia(name string) (ext string, mediaType MediaType, ok bool) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return "", "", false
	}
	ext = strings.ToLower(name[dot+1:])
	mediaType, ok = mediaExtensions[ext]
	return ext, mediaType, ok
}

// NewMediaFile builds the gallery record for a file of folder, or false when it is not media.
func NewMediaFile(folder, name string, size int64, modified time.Time) (MediaFile, bool) {
	ext, mediaType, ok := ClassifyMedia(name)
	if !ok {
		return MediaFile{}, false
	}
	return MediaFile{
		Name:         name,
		Path:         "/" + folder + "/" + name,
		Extension:    ext,
		Size:         size,
		LastModified: modified,
		Type:         mediaType,
	}, true
}
