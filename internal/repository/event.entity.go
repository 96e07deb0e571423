package repository

import (
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type PDEventEntity struct {
	ID                   int64                    `gorm:"primaryKey;autoIncrement;column:id"`
	Title                string                   `gorm:"column:title;not null"`
	DateTime             time.Time                `gorm:"column:date_time;not null"`
	Status               string                   `gorm:"column:status;not null;index"`
	NotificationSequence []model.NotificationStep `gorm:"column:notification_sequence;serializer:json"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (PDEventEntity) TableName() string { return "pd_events" }

func toEventEntity(e *model.PDEvent) *PDEventEntity {
	if e == nil {
		return nil
	}
	return &PDEventEntity{
		ID:                   e.ID,
		Title:                e.Title,
		DateTime:             e.DateTime,
		Status:               string(e.Status),
		NotificationSequence: e.NotificationSequence,
		CreatedAt:            e.CreatedAt,
	}
}

func toEventModel(e *PDEventEntity) *model.PDEvent {
	if e == nil {
		return nil
	}
	return &model.PDEvent{
		ID:                   e.ID,
		Title:                e.Title,
		DateTime:             e.DateTime,
		Status:               model.EventStatus(e.Status),
		NotificationSequence: e.NotificationSequence,
		CreatedAt:            e.CreatedAt,
	}
}

func toEventModels(entities []*PDEventEntity) []*model.PDEvent {
	if entities == nil {
		return nil
	}
	models := make([]*model.PDEvent, len(entities))
	for i, e := range entities {
		models[i] = toEventModel(e)
	}
	return models
}
