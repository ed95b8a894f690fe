package usecase

import (
	"context"
	"sort"
	"strings"

	"my-site/domain/dto"
	"my-site/domain/model"
	"my-site/domain/repository"
)

type IMediaUseCase interface {
	ListFolder(ctx context.Context, folder string) (*dto.MediaFolderResponse, error)
}

type MediaUseCase struct {
	store repository.IMediaStore
}

func NewMediaUseCase(store repository.IMediaStore) IMediaUseCase {
	return &MediaUseCase{store: store}
}

// ValidateFolderName rejects names that could escape the media root.
func ValidateFolderName(folder string) error {
	if folder == "" || folder == "." || strings.Contains(folder, "..") ||
		strings.ContainsAny(folder, "/\\\x00") {
		return repository.ErrInvalidFolder
	}
	return nil
}

// ListFolder splits a gallery folder into photos and videos, each sorted by name.
func (u *MediaUseCase) ListFolder(ctx context.Context, folder string) (*dto.MediaFolderResponse, error) {
	if err := ValidateFolderName(folder); err != nil {
		return nil, err
	}

	files, err := u.store.ListFolder(ctx, folder)
	if err != nil {
		return nil, err
	}

	photos := make([]model.MediaFile, 0)
	videos := make([]model.MediaFile, 0)
	for _, f := range files {
		switch f.Type {
		case model.MediaTypeImage:
			photos = append(photos, f)
		case model.MediaTypeVideo:
			videos = append(videos, f)
		}
	}
	sortByName(photos)
	sortByName(videos)

	return &dto.MediaFolderResponse{
		Folder:     folder,
		Photos:     photos,
		Videos:     videos,
		TotalFiles: len(photos) + len(videos),
	}, nil
}

func sortByName(files []model.MediaFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
