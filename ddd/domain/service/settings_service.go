package service

import (
	"context"
	"fmt"

	"compress-bot/ddd/domain/repo"
	"compress-bot/ddd/domain/vo"
	"compress-bot/pkg/logger"
)

// SettingsService owns the persisted encode-settings document.
type SettingsService interface {
	// Current returns the effective settings. Store failures degrade to the
	// configured defaults; configuration is best-effort, not safety-critical.
	Current(ctx context.Context) vo.EncodeSettings

	// Update validates one keyed change against the allow-list and persists
	// the new document.
	Update(ctx context.Context, key, value string) (vo.EncodeSettings, error)
}

type settingsServiceImpl struct {
	repo     repo.SettingsRepository
	defaults vo.EncodeSettings
}

// NewSettingsService 创建设置领域服务
func NewSettingsService(r repo.SettingsRepository, defaults vo.EncodeSettings) SettingsService {
	return &settingsServiceImpl{repo: r, defaults: defaults}
}

func (s *settingsServiceImpl) Current(ctx context.Context) vo.EncodeSettings {
	fields, err := s.repo.Load(ctx)
	if err != nil {
		logger.Warnf("settings load failed, using defaults: %v", err)
		return s.defaults
	}
	return vo.SettingsFromFieldMap(fields, s.defaults)
}

func (s *settingsServiceImpl) Update(ctx context.Context, key, value string) (vo.EncodeSettings, error) {
	current := s.Current(ctx)
	updated, err := current.Apply(key, value)
	if err != nil {
		return current, err
	}
	if err := s.repo.Save(ctx, updated.FieldMap()); err != nil {
		return current, fmt.Errorf("save settings: %w", err)
	}
	return updated, nil
}
