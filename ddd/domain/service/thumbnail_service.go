package service

import (
	"context"

	"compress-bot/ddd/domain/repo"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/logger"
)

// ThumbnailService owns per-user thumbnail references (platform file ids,
// last-writer-wins).
type ThumbnailService interface {
	Set(ctx context.Context, userID int64, fileID string) error

	// Current returns the stored file id, empty when none is saved or the
	// store is unavailable ("no thumbnail" is the safe default).
	Current(ctx context.Context, userID int64) string

	Delete(ctx context.Context, userID int64) error
}

type thumbnailServiceImpl struct {
	repo repo.ThumbnailRepository
}

// NewThumbnailService 创建缩略图领域服务
func NewThumbnailService(r repo.ThumbnailRepository) ThumbnailService {
	return &thumbnailServiceImpl{repo: r}
}

func (s *thumbnailServiceImpl) Set(ctx context.Context, userID int64, fileID string) error {
	if err := s.repo.Set(ctx, userID, fileID); err != nil {
		return errno.ErrPersistence.WithCause(err)
	}
	return nil
}

func (s *thumbnailServiceImpl) Current(ctx context.Context, userID int64) string {
	fileID, err := s.repo.Get(ctx, userID)
	if err != nil {
		logger.Warnf("thumbnail lookup failed for user %d: %v", userID, err)
		return ""
	}
	return fileID
}

func (s *thumbnailServiceImpl) Delete(ctx context.Context, userID int64) error {
	removed, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return errno.ErrPersistence.WithCause(err)
	}
	if !removed {
		return errno.ErrThumbNotFound
	}
	return nil
}
