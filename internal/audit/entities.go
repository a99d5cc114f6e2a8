package audit

import (
	"encoding/json"
	"fmt"

	"agency-backend/internal/models"

	"gorm.io/gorm"
)

// entityHandler knows how to reverse changes to one entity type. Snapshots
// stored in audit logs are the entity's own JSON encoding.
type entityHandler struct {
	remove   func(tx *gorm.DB, id uint) error
	restore  func(tx *gorm.DB, id uint, data string) error
	recreate func(tx *gorm.DB, data string) error
}

func handlerFor[T any]() entityHandler {
	return entityHandler{
		remove: func(tx *gorm.DB, id uint) error {
			var zero T
			return tx.Delete(&zero, "id = ?", id).Error
		},
		restore: func(tx *gorm.DB, id uint, data string) error {
			var v T
			if err := decode(data, &v); err != nil {
				return err
			}
			if err := tx.First(new(T), "id = ?", id).Error; err != nil {
				return err
			}
			// Save writes every column, including zero values.
			return tx.Save(&v).Error
		},
		recreate: func(tx *gorm.DB, data string) error {
			var v T
			if err := decode(data, &v); err != nil {
				return err
			}
			return tx.Create(&v).Error
		},
	}
}

func decode(data string, v any) error {
	if data == "" || data == "null" {
		return fmt.Errorf("no snapshot stored")
	}
	return json.Unmarshal([]byte(data), v)
}

var handlers = map[string]entityHandler{
	EntityProperty: handlerFor[models.Property](),
	EntityContact:  handlerFor[models.Contact](),
	EntityActivity: handlerFor[models.Activity](),
}

const (
	EntityProperty     = "property"
	EntityContact      = "contact"
	EntityActivity     = "activity"
	EntityBusinessPlan = "business_plan"
	EntityAgent        = "agent"
	EntitySnapshot     = "plan_snapshot"
)

// Undoable reports whether logs of this entity type can be reverted.
func Undoable(entityType string) bool {
	_, ok := handlers[entityType]
	return ok
}
