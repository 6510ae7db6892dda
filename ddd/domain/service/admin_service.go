package service

import (
	"context"

	"compress-bot/ddd/domain/repo"
	"compress-bot/pkg/errno"
	"compress-bot/pkg/logger"
)

// AdminService owns the admin membership set. The process owner carries an
// implicit, unconditional privilege: it is never stored in the set and can
// never be removed from it.
type AdminService interface {
	// IsPrivileged reports whether the user may run gated commands. Store
	// failures degrade to "not an admin" (the owner check never touches the
	// store).
	IsPrivileged(ctx context.Context, userID int64) bool

	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]int64, error)
}

type adminServiceImpl struct {
	repo    repo.AdminRepository
	ownerID int64
}

// NewAdminService 创建管理员领域服务
func NewAdminService(r repo.AdminRepository, ownerID int64) AdminService {
	return &adminServiceImpl{repo: r, ownerID: ownerID}
}

func (s *adminServiceImpl) IsPrivileged(ctx context.Context, userID int64) bool {
	if userID == s.ownerID {
		return true
	}
	ok, err := s.repo.IsMember(ctx, userID)
	if err != nil {
		logger.Warnf("admin lookup failed, treating user %d as unprivileged: %v", userID, err)
		return false
	}
	return ok
}

func (s *adminServiceImpl) Add(ctx context.Context, userID int64) error {
	if userID == s.ownerID {
		return errno.ErrOwnerImmutable
	}
	added, err := s.repo.Add(ctx, userID)
	if err != nil {
		return errno.ErrPersistence.WithCause(err)
	}
	if !added {
		return errno.ErrAdminExists
	}
	return nil
}

func (s *adminServiceImpl) Remove(ctx context.Context, userID int64) error {
	if userID == s.ownerID {
		return errno.ErrOwnerImmutable
	}
	removed, err := s.repo.Remove(ctx, userID)
	if err != nil {
		return errno.ErrPersistence.WithCause(err)
	}
	if !removed {
		return errno.ErrAdminNotFound
	}
	return nil
}

func (s *adminServiceImpl) List(ctx context.Context) ([]int64, error) {
	return s.repo.List(ctx)
}
