package repository

import (
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type ContactEntity struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `gorm:"column:name;not null"`
	Phone       string    `gorm:"column:phone"`
	Email       string    `gorm:"column:email"`
	Company     string    `gorm:"column:company"`
	Categories  []int64   `gorm:"column:categories;serializer:json"`
	OptOutSMS   bool      `gorm:"column:opt_out_sms;not null;default:false"`
	OptOutEmail bool      `gorm:"column:opt_out_email;not null;default:false"`
	Status      string    `gorm:"column:status;not null;index;default:active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ContactEntity) TableName() string { return "contacts" }

func toContactEntity(c *model.Contact) *ContactEntity {
	if c == nil {
		return nil
	}
	return &ContactEntity{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Company:     c.Company,
		Categories:  c.Categories,
		OptOutSMS:   c.OptOutSMS,
		OptOutEmail: c.OptOutEmail,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
	}
}

func toContactModel(e *ContactEntity) *model.Contact {
	if e == nil {
		return nil
	}
	return &model.Contact{
		ID:          e.ID,
		Name:        e.Name,
		Phone:       e.Phone,
		Email:       e.Email,
		Company:     e.Company,
		Categories:  e.Categories,
		OptOutSMS:   e.OptOutSMS,
		OptOutEmail: e.OptOutEmail,
		Status:      model.ContactStatus(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

func toContactModels(entities []*ContactEntity) []*model.Contact {
	if entities == nil {
		return nil
	}
	models := make([]*model.Contact, len(entities))
	for i, e := range entities {
		models[i] = toContactModel(e)
	}
	return models
}
