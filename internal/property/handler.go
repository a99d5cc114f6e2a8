package property

import (
	"fmt"
	"strings"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CreatePropertyRequest struct {
	AgentID      *uint   `json:"agent_id"` // admins only
	Address      string  `json:"address" validate:"required,max=255"`
	Suburb       string  `json:"suburb" validate:"max=100"`
	Postcode     string  `json:"postcode" validate:"max=10"`
	PropertyType string  `json:"property_type" validate:"omitempty,oneof=house unit townhouse land"`
	Bedrooms     int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int     `json:"bathrooms" validate:"gte=0"`
	CarSpaces    int     `json:"car_spaces" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	Status       string  `json:"status" validate:"omitempty,oneof=appraisal listed under_offer sold withdrawn"`
	Description  string  `json:"description" validate:"max=2000"`
}

type UpdatePropertyRequest struct {
	Address      *string  `json:"address" validate:"omitempty,min=1,max=255"`
	Suburb       *string  `json:"suburb" validate:"omitempty,max=100"`
	Postcode     *string  `json:"postcode" validate:"omitempty,max=10"`
	PropertyType *string  `json:"property_type" validate:"omitempty,oneof=house unit townhouse land"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	CarSpaces    *int     `json:"car_spaces" validate:"omitempty,gte=0"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Status       *string  `json:"status" validate:"omitempty,oneof=appraisal listed under_offer sold withdrawn"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
}

// apply copies the set fields of req onto p.
func (req UpdatePropertyRequest) apply(p *models.Property) {
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.Suburb != nil {
		p.Suburb = strings.TrimSpace(*req.Suburb)
	}
	if req.Postcode != nil {
		p.Postcode = strings.TrimSpace(*req.Postcode)
	}
	if req.PropertyType != nil {
		p.PropertyType = *req.PropertyType
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.CarSpaces != nil {
		p.CarSpaces = *req.CarSpaces
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Status != nil {
		p.Status = models.PropertyStatus(*req.Status)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
}

func record(c *fiber.Ctx, action models.AuditAction, p models.Property, desc string, before, after any) {
	userID, userName, err := auth.UserInfo(c)
	if err != nil {
		return
	}
	agentID := p.AgentID
	audit.Record(audit.LogOptions{
		AgentID:     &agentID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  audit.EntityProperty,
		EntityID:    p.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

func find(c *fiber.Ctx) (models.Property, error) {
	var p models.Property
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return p, fiber.NewError(fiber.StatusBadRequest, "Invalid property id")
	}
	if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
		return p, fiber.NewError(fiber.StatusNotFound, "Property not found")
	}
	if err := auth.CanAccess(c, p.AgentID); err != nil {
		return p, err
	}
	return p, nil
}

// POST /api/properties
func CreatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePropertyRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}

		agentID, err := auth.ResolveAgentID(c, body.AgentID)
		if err != nil {
			return err
		}

		status := models.PropertyStatus(body.Status)
		if status == "" {
			status = models.PropertyStatusAppraisal
		}

		p := models.Property{
			AgentID:      agentID,
			Address:      strings.TrimSpace(body.Address),
			Suburb:       strings.TrimSpace(body.Suburb),
			Postcode:     strings.TrimSpace(body.Postcode),
			PropertyType: body.PropertyType,
			Bedrooms:     body.Bedrooms,
			Bathrooms:    body.Bathrooms,
			CarSpaces:    body.CarSpaces,
			Price:        body.Price,
			Status:       status,
			Description:  strings.TrimSpace(body.Description),
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save property")
		}

		record(c, models.AuditActionCreate, p, fmt.Sprintf("Property added: %s", p.Address), nil, p)
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/properties?agent_id=&status=&suburb=&q=
func ListPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		agentID, err := auth.AgentFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Property{})
		if agentID != nil {
			dbq = dbq.Where("agent_id = ?", *agentID)
		}
		if s := c.Query("status"); s != "" {
			if !models.PropertyStatus(s).Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
			}
			dbq = dbq.Where("status = ?", s)
		}
		if s := strings.TrimSpace(c.Query("suburb")); s != "" {
			dbq = dbq.Where("LOWER(suburb) = ?", strings.ToLower(s))
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			dbq = dbq.Where("address ILIKE ?", "%"+q+"%")
		}

		var list []models.Property
		if err := dbq.Order("updated_at DESC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list properties")
		}
		return c.JSON(list)
	}
}

// GET /api/properties/:id
func GetPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := find(c)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// PUT /api/properties/:id
func UpdatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := find(c)
		if err != nil {
			return err
		}

		var body UpdatePropertyRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}

		before := p
		body.apply(&p)

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update property")
		}

		desc := fmt.Sprintf("Property updated: %s", p.Address)
		if before.Status != p.Status {
			desc = fmt.Sprintf("Property %s: %s -> %s", p.Address, before.Status, p.Status)
		}
		record(c, models.AuditActionUpdate, p, desc, before, p)
		return c.JSON(p)
	}
}

// DELETE /api/properties/:id
func DeletePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := find(c)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(&models.Property{}, "id = ?", p.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete property")
		}

		record(c, models.AuditActionDelete, p, fmt.Sprintf("Property deleted: %s", p.Address), p, nil)
		return c.JSON(fiber.Map{"message": "Property deleted"})
	}
}
