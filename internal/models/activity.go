package models

import "time"

type ActivityKind string

const (
	ActivityDoorKnock ActivityKind = "door_knock"
	ActivityPhoneCall ActivityKind = "phone_call"
	ActivityAppraisal ActivityKind = "appraisal"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityDoorKnock, ActivityPhoneCall, ActivityAppraisal:
		return true
	}
	return false
}

// Activity is one prospecting action logged by an agent.
type Activity struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	AgentID    uint         `gorm:"index;not null" json:"agent_id"`
	Agent      User         `gorm:"foreignKey:AgentID" json:"-"`
	Kind       ActivityKind `gorm:"size:20;index;not null" json:"kind"`
	Date       time.Time    `gorm:"index;not null" json:"date"`
	PropertyID *uint        `gorm:"index" json:"property_id"`
	ContactID  *uint        `gorm:"index" json:"contact_id"`
	Address    string       `gorm:"size:255" json:"address"`
	Outcome    string       `gorm:"size:100" json:"outcome"` // e.g. no_answer, interested, booked
	Notes      string       `gorm:"size:1000" json:"notes"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
