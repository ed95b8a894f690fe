package repository

import (
	"context"
	"errors"

	"my-site/domain/model"
)

var (
	// ErrFolderNotFound is returned when a gallery folder does not exist in the store.
	ErrFolderNotFound = errors.New("media folder not found")
	// ErrInvalidFolder is returned for folder names carrying separators or traversal sequences.
	ErrInvalidFolder = errors.New("invalid media folder name")
)

// IMediaStore lists the immediate files of a gallery folder
type IMediaStore interface {
	ListFolder(ctx context.Context, folder string) ([]model.MediaFile, error)
}
