package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"my-site/domain/model"
	"my-site/domain/repository"
	"my-site/infrastructure/logger"
)

// Verify interface implementation
var _ repository.IMediaStore = (*LocalMediaStore)(nil)

// LocalMediaStore serves gallery folders from a directory on disk (the site's public/ dir).
type LocalMediaStore struct {
	root string
}

func NewLocalMediaStore(root string) *LocalMediaStore {
	return &LocalMediaStore{root: root}
}

// ListFolder returns the media files directly inside root/folder. Subdirectories and
// non-media files are ignored. The folder name must already be validated by the caller.
func (s *LocalMediaStore) ListFolder(ctx context.Context, folder string) ([]model.MediaFile, error) {
	dir := filepath.Join(s.root, folder)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrFolderNotFound
		}
		return nil, fmt.Errorf("stat media folder %q: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, repository.ErrFolderNotFound
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read media folder %q: %w", folder, err)
	}

	files := make([]model.MediaFile, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			logger.GetLogger().WithField("error", err).WithField("file", entry.Name()).Warn("Skipping media file")
			continue
		}
		if f, ok := model.NewMediaFile(folder, entry.Name(), fi.Size(), fi.ModTime()); ok {
			files = append(files, f)
		}
	}
	return files, nil
}
