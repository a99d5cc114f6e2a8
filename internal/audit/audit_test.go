package audit

import (
	"testing"
	"time"

	"agency-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestToJSON(t *testing.T) {
	assert.Equal(t, "null", toJSON(nil))
	assert.Equal(t, `{"a":1}`, toJSON(map[string]int{"a": 1}))
	assert.Equal(t, "null", toJSON(func() {}))
}

func TestUndoable(t *testing.T) {
	assert.True(t, Undoable(EntityContact))
	assert.True(t, Undoable(EntityProperty))
	assert.True(t, Undoable(EntityActivity))
	assert.False(t, Undoable(EntityBusinessPlan))
}

func TestToResponse(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	agent := uint(4)

	r := toResponse(models.AuditLog{
		ID: 1, CreatedAt: at, AgentID: &agent, EntityType: EntityContact,
		Action: models.AuditActionCreate,
	})
	assert.True(t, r.Undoable)
	assert.Equal(t, "2026-03-04 10:30:00", r.CreatedAt)
	assert.Nil(t, r.UndoneAt)

	r = toResponse(models.AuditLog{EntityType: EntityContact, Action: models.AuditActionUndo})
	assert.False(t, r.Undoable)

	r = toResponse(models.AuditLog{EntityType: EntityContact, Action: models.AuditActionImport})
	assert.False(t, r.Undoable)

	r = toResponse(models.AuditLog{EntityType: EntityContact, Action: models.AuditActionUpdate, IsUndone: true, UndoneAt: &at})
	assert.False(t, r.Undoable)
	assert.Equal(t, "2026-03-04 10:30:00", *r.UndoneAt)
}

func TestDecode(t *testing.T) {
	var c models.Contact
	assert.Error(t, decode("null", &c))
	assert.Error(t, decode("", &c))
	assert.NoError(t, decode(`{"id":3,"first_name":"Ann"}`, &c))
	assert.Equal(t, uint(3), c.ID)
	assert.Equal(t, "Ann", c.FirstName)
}
