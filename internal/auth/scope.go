package auth

import (
	"fmt"

	"agency-backend/internal/database"
	"agency-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Identity returns the caller's user id and role from the verified token.
func Identity(c *fiber.Ctx) (uint, models.UserRole, error) {
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Role missing from token")
	}
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || userID == 0 {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "User missing from token")
	}
	return userID, role, nil
}

// ResolveAgentID picks whose records a request acts on. Agents always act on
// their own; admins name the agent explicitly or default to themselves.
func ResolveAgentID(c *fiber.Ctx, requested *uint) (uint, error) {
	userID, role, err := Identity(c)
	if err != nil {
		return 0, err
	}
	if role == models.RoleAgent {
		if requested != nil && *requested != userID {
			return 0, fiber.NewError(fiber.StatusForbidden, "Agents can only act on their own records")
		}
		return userID, nil
	}
	if requested == nil || *requested == 0 {
		return userID, nil
	}
	return *requested, nil
}

// ResolveAgentIDFromQuery is ResolveAgentID with the agent taken from ?agent_id.
func ResolveAgentIDFromQuery(c *fiber.Ctx) (uint, error) {
	s := c.Query("agent_id")
	if s == "" {
		return ResolveAgentID(c, nil)
	}
	var id uint
	if _, err := fmt.Sscan(s, &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "agent_id is invalid")
	}
	return ResolveAgentID(c, &id)
}

// AgentFilter is the optional agent restriction for list endpoints: agents
// see only their own rows, admins see everything unless ?agent_id is given.
func AgentFilter(c *fiber.Ctx) (*uint, error) {
	_, role, err := Identity(c)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin && c.Query("agent_id") == "" {
		return nil, nil
	}
	id, err := ResolveAgentIDFromQuery(c)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CanAccess reports whether the caller may touch a record owned by agentID.
func CanAccess(c *fiber.Ctx, agentID uint) error {
	userID, role, err := Identity(c)
	if err != nil {
		return err
	}
	if role == models.RoleAgent && userID != agentID {
		return fiber.NewError(fiber.StatusForbidden, "You do not have access to this record")
	}
	return nil
}

// UserInfo loads the caller's id and display name for audit entries.
func UserInfo(c *fiber.Ctx) (uint, string, error) {
	userID, _, err := Identity(c)
	if err != nil {
		return 0, "", err
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}
	return user.ID, user.Name, nil
}
