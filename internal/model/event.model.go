package model

import "time"

// EventStatus controls sequencer visibility. Only published events are
// evaluated for notification steps.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
)

// StepTiming places a step before or after the event time.
type StepTiming string

const (
	TimingBefore StepTiming = "before"
	TimingAfter  StepTiming = "after"
)

// TimingUnit scales a step's timing value. An unrecognized unit is
// treated as days.
type TimingUnit string

const (
	UnitMinutes TimingUnit = "minutes"
	UnitHours   TimingUnit = "hours"
	UnitDays    TimingUnit = "days"
	UnitWeeks   TimingUnit = "weeks"
)

// StepAudience selects recipients for one notification step.
type StepAudience string

const (
	StepAudienceRegistered StepAudience = "registered"
	StepAudienceAll        StepAudience = "all"
)

// NotificationStep is one automated-reminder rule within an event.
// Once Fired is true the step never fires again.
type NotificationStep struct {
	ID            string       `json:"id"`
	Order         int          `json:"order"`
	Channel       Channel      `json:"channel"`
	Timing        StepTiming   `json:"timing"`
	TimingValue   int          `json:"timing_value"`
	TimingUnit    TimingUnit   `json:"timing_unit"`
	Audience      StepAudience `json:"audience"`
	CustomContent string       `json:"custom_content,omitempty"`
	Fired         bool         `json:"fired,omitempty"`
}

type PDEvent struct {
	ID                   int64              `json:"id"`
	Title                string             `json:"title"`
	DateTime             time.Time          `json:"date_time"`
	Status               EventStatus        `json:"status"`
	NotificationSequence []NotificationStep `json:"notification_sequence"`
	CreatedAt            time.Time          `json:"created_at"`
}

// Registration links a contact to an event.
type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	ContactID int64     `json:"contact_id"`
	CreatedAt time.Time `json:"created_at"`
}
