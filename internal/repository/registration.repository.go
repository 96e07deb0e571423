package repository

import (
	"context"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

type RegistrationRepository struct {
	*pg.DB
}

func NewRegistrationRepository(db *pg.DB) *RegistrationRepository {
	return &RegistrationRepository{db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	entity := &RegistrationEntity{
		EventID:   reg.EventID,
		ContactID: reg.ContactID,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toRegistrationModel(entity), nil
}

// ListContacts returns the contacts registered for an event. Delivery
// guards (opt-out, active status) are the caller's concern; registration
// alone decides membership here.
func (r *RegistrationRepository) ListContacts(ctx context.Context, eventID int64) ([]*model.Contact, error) {
	var entities []*ContactEntity
	err := r.Read(ctx).
		Table("contacts AS c").
		Select("c.*").
		Joins("INNER JOIN registrations AS reg ON reg.contact_id = c.id").
		Where("reg.event_id = ?", eventID).
		Order("c.id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toContactModels(entities), nil
}
