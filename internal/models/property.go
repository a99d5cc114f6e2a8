package models

import "time"

type PropertyStatus string

const (
	PropertyStatusAppraisal  PropertyStatus = "appraisal"
	PropertyStatusListed     PropertyStatus = "listed"
	PropertyStatusUnderOffer PropertyStatus = "under_offer"
	PropertyStatusSold       PropertyStatus = "sold"
	PropertyStatusWithdrawn  PropertyStatus = "withdrawn"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusAppraisal, PropertyStatusListed, PropertyStatusUnderOffer,
		PropertyStatusSold, PropertyStatusWithdrawn:
		return true
	}
	return false
}

type Property struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AgentID      uint           `gorm:"index;not null" json:"agent_id"`
	Agent        User           `gorm:"foreignKey:AgentID" json:"-"`
	Address      string         `gorm:"size:255;not null" json:"address"`
	Suburb       string         `gorm:"size:100;index" json:"suburb"`
	Postcode     string         `gorm:"size:10" json:"postcode"`
	PropertyType string         `gorm:"size:50" json:"property_type"` // house, unit, townhouse, land
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    int            `json:"bathrooms"`
	CarSpaces    int            `json:"car_spaces"`
	Price        float64        `json:"price"`
	Status       PropertyStatus `gorm:"size:20;index;not null" json:"status"`
	Description  string         `gorm:"size:2000" json:"description"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
