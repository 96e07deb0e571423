package services

import (
	"context"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*model.APISettings, error)
	Upsert(ctx context.Context, s *model.APISettings) error
}

type SettingsInvalidator interface {
	Invalidate()
}

// SettingsService fronts the provider credentials. Updates drop the
// delivery-side cache so new credentials take effect on the next cycle
// instead of after the TTL.
type SettingsService struct {
	settings SettingsRepository
	cache    SettingsInvalidator
}

func NewSettingsService(settings SettingsRepository, cache SettingsInvalidator) *SettingsService {
	return &SettingsService{
		settings: settings,
		cache:    cache,
	}
}

func (s *SettingsService) Get(ctx context.Context) (*model.APISettings, error) {
	return s.settings.Get(ctx)
}

func (s *SettingsService) Update(ctx context.Context, apiSettings *model.APISettings) error {
	if err := s.settings.Upsert(ctx, apiSettings); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	return nil
}
