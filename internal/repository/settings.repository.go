package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

// settingsRowID: api_settings is a single-row table.
const settingsRowID int64 = 1

type SettingsRepository struct {
	*pg.DB
}

func NewSettingsRepository(db *pg.DB) *SettingsRepository {
	return &SettingsRepository{db}
}

// Get returns the provider credentials. A missing row is not an error:
// empty settings force stub delivery on every channel.
func (r *SettingsRepository) Get(ctx context.Context) (*model.APISettings, error) {
	var entity APISettingsEntity
	err := r.Read(ctx).First(&entity, "id = ?", settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.APISettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return toSettingsModel(&entity), nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *model.APISettings) error {
	entity := &APISettingsEntity{
		ID:                settingsRowID,
		TwilioAccountSID:  s.TwilioAccountSID,
		TwilioAuthToken:   s.TwilioAuthToken,
		TwilioFromNumber:  s.TwilioFromNumber,
		SendGridAPIKey:    s.SendGridAPIKey,
		SendGridFromEmail: s.SendGridFromEmail,
	}
	return r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(entity).Error
}
