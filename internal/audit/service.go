package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"agency-backend/internal/database"
	"agency-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	AgentID     *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// toJSON renders v for a jsonb column; Postgres needs "null", not "".
func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func WriteLog(opts LogOptions) error {
	entry := models.AuditLog{
		AgentID:     opts.AgentID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  toJSON(opts.Before),
		AfterData:   toJSON(opts.After),
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}
	return nil
}

// Record writes a log and only reports failures; a missing audit entry never
// fails the request that caused it.
func Record(opts LogOptions) {
	if err := WriteLog(opts); err != nil {
		log.Printf("[WARN] %v", err)
	}
}

// UndoLog reverts the change an audit log describes and records the undo.
func UndoLog(logID uint, userID uint, userName string) error {
	var entry models.AuditLog
	if err := database.DB.First(&entry, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("log not found: %w", err)
	}

	if entry.IsUndone {
		return fmt.Errorf("this change has already been undone")
	}

	h, ok := handlers[entry.EntityType]
	if !ok {
		return fmt.Errorf("unknown entity type: %s", entry.EntityType)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		switch entry.Action {
		case models.AuditActionCreate:
			if err := h.remove(tx, entry.EntityID); err != nil {
				return fmt.Errorf("could not delete entity: %w", err)
			}
		case models.AuditActionUpdate:
			if err := h.restore(tx, entry.EntityID, entry.BeforeData); err != nil {
				return fmt.Errorf("could not restore entity: %w", err)
			}
		case models.AuditActionDelete:
			if err := h.recreate(tx, entry.BeforeData); err != nil {
				return fmt.Errorf("could not recreate entity: %w", err)
			}
		default:
			return fmt.Errorf("this action cannot be undone")
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("could not update log: %w", err)
		}

		undo := models.AuditLog{
			AgentID:     entry.AgentID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: fmt.Sprintf("Undone: %s", entry.Description),
			BeforeData:  entry.AfterData,
			AfterData:   entry.BeforeData,
			Undone:      true,
		}
		if err := tx.Create(&undo).Error; err != nil {
			return fmt.Errorf("could not write undo log: %w", err)
		}
		return nil
	})
}
