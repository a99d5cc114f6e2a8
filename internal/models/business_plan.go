package models

import "time"

// BusinessPlan stores one plan document per owner and variant. Document is the
// serialized plan input; derived values are never stored here.
type BusinessPlan struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   uint   `gorm:"uniqueIndex:idx_business_plans_owner_variant;not null"`
	Owner     User   `gorm:"foreignKey:OwnerID"`
	Variant   string `gorm:"size:10;uniqueIndex:idx_business_plans_owner_variant;not null"`
	Document  string `gorm:"type:jsonb;not null"`
	Revision  int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanSnapshot freezes a plan and its projection for reporting.
type PlanSnapshot struct {
	ID          uint   `gorm:"primaryKey"`
	PlanID      uint   `gorm:"index;not null"`
	OwnerID     uint   `gorm:"index;not null"`
	Variant     string `gorm:"size:10;not null"`
	TimeFrame   string `gorm:"size:10;not null"`
	Title       string `gorm:"size:200"`
	Revision    int
	CreatedByID uint

	TotalNetCommission      float64
	TotalBusinessEarnings   float64
	TotalAgentEarnings      float64
	AdditionalExpensesTotal float64

	Document   string `gorm:"type:jsonb"`
	Projection string `gorm:"type:jsonb"`

	CreatedAt time.Time
}
