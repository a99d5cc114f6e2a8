package agent

import (
	"fmt"
	"strings"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateAgentRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Phone    string `json:"phone" validate:"max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateAgentRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Active   *bool   `json:"active"`
}

type AgentResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(u models.User) AgentResponse {
	return AgentResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func emailTaken(email string, exceptID uint) bool {
	var count int64
	database.DB.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count)
	return count > 0
}

func findAgent(c *fiber.Ctx) (models.User, error) {
	var user models.User
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return user, fiber.NewError(fiber.StatusBadRequest, "Invalid agent id")
	}
	if err := database.DB.
		Where("id = ? AND role = ?", id, models.RoleAgent).
		First(&user).Error; err != nil {
		return user, fiber.NewError(fiber.StatusNotFound, "Agent not found")
	}
	return user, nil
}

func record(c *fiber.Ctx, action models.AuditAction, u models.User, desc string, before, after any) {
	userID, userName, err := auth.UserInfo(c)
	if err != nil {
		return
	}
	agentID := u.ID
	audit.Record(audit.LogOptions{
		AgentID:     &agentID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  audit.EntityAgent,
		EntityID:    u.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

// POST /api/admin/agents
func CreateAgentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAgentRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}

		body.Email = normalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)

		if emailTaken(body.Email, 0) {
			return fiber.NewError(fiber.StatusBadRequest, "This email is already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			Phone:        strings.TrimSpace(body.Phone),
			PasswordHash: string(hash),
			Role:         models.RoleAgent,
			Active:       true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create agent")
		}

		record(c, models.AuditActionCreate, user, fmt.Sprintf("Agent created: %s", user.Name), nil, toResponse(user))

		// The plain password is only ever returned here.
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"agent":    toResponse(user),
			"password": body.Password,
		})
	}
}

// GET /api/admin/agents?active=true
func ListAgentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Where("role = ?", models.RoleAgent)
		switch c.Query("active") {
		case "true":
			dbq = dbq.Where("active = ?", true)
		case "false":
			dbq = dbq.Where("active = ?", false)
		}

		var users []models.User
		if err := dbq.Order("name ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list agents")
		}

		res := make([]AgentResponse, 0, len(users))
		for _, u := range users {
			res = append(res, toResponse(u))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/agents/:id
func GetAgentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := findAgent(c)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(user))
	}
}

// PUT /api/admin/agents/:id
func UpdateAgentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := findAgent(c)
		if err != nil {
			return err
		}

		var body UpdateAgentRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}

		before := toResponse(user)

		if body.Name != nil {
			user.Name = strings.TrimSpace(*body.Name)
		}
		if body.Email != nil {
			email := normalizeEmail(*body.Email)
			if emailTaken(email, user.ID) {
				return fiber.NewError(fiber.StatusBadRequest, "This email is already registered")
			}
			user.Email = email
		}
		if body.Phone != nil {
			user.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Active != nil {
			user.Active = *body.Active
		}
		if body.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			user.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update agent")
		}

		record(c, models.AuditActionUpdate, user, fmt.Sprintf("Agent updated: %s", user.Name), before, toResponse(user))
		return c.JSON(toResponse(user))
	}
}

// DELETE /api/admin/agents/:id
// Agents own properties, contacts and plans, so they are deactivated rather
// than removed; a deactivated agent can no longer log in.
func DeleteAgentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := findAgent(c)
		if err != nil {
			return err
		}
		before := toResponse(user)

		user.Active = false
		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate agent")
		}

		record(c, models.AuditActionDelete, user, fmt.Sprintf("Agent deactivated: %s", user.Name), before, toResponse(user))
		return c.JSON(fiber.Map{"message": "Agent deactivated"})
	}
}
