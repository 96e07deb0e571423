package model

import (
	"errors"
	"time"
)

// BroadcastStatus is the lifecycle state of a broadcast. Transitions are
// scheduled -> sending -> sent|failed; sent and failed are terminal for a
// send cycle.
type BroadcastStatus string

const (
	BroadcastStatusDraft     BroadcastStatus = "draft"
	BroadcastStatusScheduled BroadcastStatus = "scheduled"
	BroadcastStatusSending   BroadcastStatus = "sending"
	BroadcastStatusSent      BroadcastStatus = "sent"
	BroadcastStatusFailed    BroadcastStatus = "failed"
)

// Channel selects which provider paths a broadcast or notification step uses.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelBoth  Channel = "both"
)

func (c Channel) IncludesSMS() bool   { return c == ChannelSMS || c == ChannelBoth }
func (c Channel) IncludesEmail() bool { return c == ChannelEmail || c == ChannelBoth }

// AudienceType tags an AudienceTarget variant.
type AudienceType string

const (
	AudienceAll             AudienceType = "all"
	AudienceCategories      AudienceType = "categories"
	AudienceEventRegistered AudienceType = "event-registered"
)

// AudienceTarget specifies who receives a broadcast. It is resolved to
// contacts freshly at send time, never persisted as a contact list.
type AudienceTarget struct {
	Type        AudienceType `json:"type"`
	CategoryIDs []int64      `json:"category_ids,omitempty"`
	EventID     int64        `json:"event_id,omitempty"`
}

// DeliveryAnalytics are the per-channel counters recorded after a send
// cycle. Delivered never exceeds Total for either channel.
type DeliveryAnalytics struct {
	SMSDelivered   int `json:"sms_delivered"`
	SMSTotal       int `json:"sms_total"`
	EmailDelivered int `json:"email_delivered"`
	EmailTotal     int `json:"email_total"`
}

type Broadcast struct {
	ID          int64             `json:"id"`
	Channel     Channel           `json:"channel"`
	Status      BroadcastStatus   `json:"status"`
	SMSContent  string            `json:"sms_content,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	EmailHTML   string            `json:"email_html,omitempty"`
	Audience    AudienceTarget    `json:"audience"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	SentAt      *time.Time        `json:"sent_at,omitempty"`
	Analytics   DeliveryAnalytics `json:"analytics"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BroadcastCreateRequest is the input for composing a broadcast.
type BroadcastCreateRequest struct {
	Channel     Channel
	SMSContent  string
	Subject     string
	EmailHTML   string
	Audience    AudienceTarget
	ScheduledAt *time.Time
}

func (p BroadcastCreateRequest) Validate() error {
	switch p.Channel {
	case ChannelSMS, ChannelEmail, ChannelBoth:
	default:
		return errors.New("channel must be sms, email or both")
	}
	if p.Channel.IncludesSMS() && p.SMSContent == "" {
		return errors.New("sms_content is required for sms sends")
	}
	if p.Channel.IncludesEmail() && p.EmailHTML == "" {
		return errors.New("email_html is required for email sends")
	}
	switch p.Audience.Type {
	case AudienceAll, AudienceCategories:
	case AudienceEventRegistered:
		if p.Audience.EventID == 0 {
			return errors.New("event_id is required for event-registered audience")
		}
	default:
		return errors.New("audience type must be all, categories or event-registered")
	}
	return nil
}

// BroadcastFilter controls List queries.
type BroadcastFilter struct {
	Statuses []BroadcastStatus // IN (...)
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	Desc     bool // order by created_at
}
