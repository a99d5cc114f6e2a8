package models

import "time"

type Contact struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	AgentID   uint   `gorm:"index;not null" json:"agent_id"`
	Agent     User   `gorm:"foreignKey:AgentID" json:"-"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:150;index" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`
	Address   string `gorm:"size:255" json:"address"`
	Suburb    string `gorm:"size:100" json:"suburb"`
	Notes     string `gorm:"size:2000" json:"notes"`

	// Set when the contact came from a CSV import; the whole batch can be removed.
	ImportBatch *string `gorm:"size:36;index" json:"import_batch"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
