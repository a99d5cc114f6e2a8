package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionUndo   AuditAction = "undo"

	// Bulk actions on contact import batches; these are not undoable.
	AuditActionImport      AuditAction = "import"
	AuditActionBatchDelete AuditAction = "batch_delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Agent whose records were touched; nil for agency-wide records.
	AgentID *uint `gorm:"index" json:"agent_id"`

	// Who did it
	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"`

	// e.g. "property", "contact", "activity", "business_plan"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`

	// Set on the log written by an undo.
	Undone bool `json:"undone"`

	// Set on the original log once it has been undone.
	IsUndone bool       `gorm:"default:false" json:"is_undone"`
	UndoneBy *uint      `json:"undone_by"`
	UndoneAt *time.Time `json:"undone_at"`
}
