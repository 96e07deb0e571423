package repository

import (
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type BroadcastEntity struct {
	ID          int64                   `gorm:"primaryKey;autoIncrement;column:id"`
	Channel     string                  `gorm:"column:channel;not null"`
	Status      string                  `gorm:"column:status;not null;index"`
	SMSContent  string                  `gorm:"column:sms_content"`
	Subject     string                  `gorm:"column:subject"`
	EmailHTML   string                  `gorm:"column:email_html"`
	Audience    model.AudienceTarget    `gorm:"column:audience;serializer:json"`
	ScheduledAt *time.Time              `gorm:"column:scheduled_at;index"`
	SentAt      *time.Time              `gorm:"column:sent_at"`
	Analytics   model.DeliveryAnalytics `gorm:"column:analytics;serializer:json"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (BroadcastEntity) TableName() string { return "broadcasts" }

func toBroadcastEntity(b *model.Broadcast) *BroadcastEntity {
	if b == nil {
		return nil
	}
	return &BroadcastEntity{
		ID:          b.ID,
		Channel:     string(b.Channel),
		Status:      string(b.Status),
		SMSContent:  b.SMSContent,
		Subject:     b.Subject,
		EmailHTML:   b.EmailHTML,
		Audience:    b.Audience,
		ScheduledAt: b.ScheduledAt,
		SentAt:      b.SentAt,
		Analytics:   b.Analytics,
		CreatedAt:   b.CreatedAt,
	}
}

func toBroadcastModel(e *BroadcastEntity) *model.Broadcast {
	if e == nil {
		return nil
	}
	return &model.Broadcast{
		ID:          e.ID,
		Channel:     model.Channel(e.Channel),
		Status:      model.BroadcastStatus(e.Status),
		SMSContent:  e.SMSContent,
		Subject:     e.Subject,
		EmailHTML:   e.EmailHTML,
		Audience:    e.Audience,
		ScheduledAt: e.ScheduledAt,
		SentAt:      e.SentAt,
		Analytics:   e.Analytics,
		CreatedAt:   e.CreatedAt,
	}
}

func toBroadcastModels(entities []*BroadcastEntity) []*model.Broadcast {
	if entities == nil {
		return nil
	}
	models := make([]*model.Broadcast, len(entities))
	for i, e := range entities {
		models[i] = toBroadcastModel(e)
	}
	return models
}
