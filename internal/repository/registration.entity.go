package repository

import (
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type RegistrationEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	EventID   int64     `gorm:"column:event_id;not null;index"`
	ContactID int64     `gorm:"column:contact_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RegistrationEntity) TableName() string { return "registrations" }

func toRegistrationModel(e *RegistrationEntity) *model.Registration {
	if e == nil {
		return nil
	}
	return &model.Registration{
		ID:        e.ID,
		EventID:   e.EventID,
		ContactID: e.ContactID,
		CreatedAt: e.CreatedAt,
	}
}
