package model

import "time"

// ContactStatus is the admin-managed lifecycle state of a contact.
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
)

type Contact struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Company     string        `json:"company"`
	Categories  []int64       `json:"categories"`
	OptOutSMS   bool          `json:"opt_out_sms"`
	OptOutEmail bool          `json:"opt_out_email"`
	Status      ContactStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ContactFilter controls active-contact queries. An empty CategoryIDs
// matches every active contact.
type ContactFilter struct {
	CategoryIDs []int64
	Limit       int
	Offset      int
}
