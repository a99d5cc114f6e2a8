package audit

import (
	"fmt"

	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	AgentID     *uint              `json:"agent_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Undoable    bool               `json:"undoable"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *uint              `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

// GET /api/audit-logs?entity_type=contact&entity_id=1&agent_id=2&user_id=1
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID, err := auth.AgentFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.AuditLog{})
		if agentID != nil {
			dbq = dbq.Where("agent_id = ?", *agentID)
		}

		if s := c.Query("user_id"); s != "" {
			var uid uint
			if _, err := fmt.Sscan(s, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}
		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if s := c.Query("entity_id"); s != "" {
			var eid uint
			if _, err := fmt.Sscan(s, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(c.QueryInt("limit", 200)).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}
		return c.JSON(resp)
	}
}

func toResponse(l models.AuditLog) AuditLogResponse {
	var undoneAt *string
	if l.UndoneAt != nil {
		s := l.UndoneAt.Format("2006-01-02 15:04:05")
		undoneAt = &s
	}
	return AuditLogResponse{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		AgentID:     l.AgentID,
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		Description: l.Description,
		Undoable:    !l.IsUndone && revertible(l.Action) && Undoable(l.EntityType),
		IsUndone:    l.IsUndone,
		UndoneBy:    l.UndoneBy,
		UndoneAt:    undoneAt,
	}
}

func revertible(a models.AuditAction) bool {
	switch a {
	case models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete:
		return true
	}
	return false
}

// POST /api/audit-logs/:id/undo
func UndoAuditLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logID uint
		if _, err := fmt.Sscan(c.Params("id"), &logID); err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid log id")
		}

		userID, userName, err := auth.UserInfo(c)
		if err != nil {
			return err
		}

		var entry models.AuditLog
		if err := database.DB.First(&entry, "id = ?", logID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Log not found")
		}

		// Agents may only undo changes to their own records.
		if entry.AgentID == nil {
			if _, role, _ := auth.Identity(c); role != models.RoleAdmin {
				return fiber.NewError(fiber.StatusForbidden, "Only admins can undo this change")
			}
		} else if err := auth.CanAccess(c, *entry.AgentID); err != nil {
			return err
		}

		if err := UndoLog(logID, userID, userName); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"message": "Change undone",
		})
	}
}
