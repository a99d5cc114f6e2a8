package businessplan

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/models"
	"agency-backend/internal/plan"
	"agency-backend/internal/report"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type PlanResponse struct {
	ID         uint            `json:"id"`
	OwnerID    uint            `json:"owner_id"`
	Revision   int             `json:"revision"`
	Plan       *plan.Plan      `json:"plan"`
	Projection plan.Projection `json:"projection"`
	UpdatedAt  *string         `json:"updated_at"`
}

type UpdateFieldRequest struct {
	Agent string   `json:"agent"`
	Field string   `json:"field" validate:"required"`
	Value *float64 `json:"value"`
}

type AddAgentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type TimeFrameRequest struct {
	TimeFrame string `json:"time_frame" validate:"required,oneof=daily weekly monthly yearly"`
}

// resolveOwner reads :variant and decides whose plan the request is about.
// The admin plan belongs to the admin; agent plans to the agent, with admins
// allowed to pick one through ?agent_id.
func resolveOwner(c *fiber.Ctx) (plan.Variant, uint, error) {
	v, err := plan.ParseVariant(c.Params("variant"))
	if err != nil {
		return "", 0, fiber.NewError(fiber.StatusNotFound, "Unknown plan variant")
	}
	userID, role, err := auth.Identity(c)
	if err != nil {
		return "", 0, err
	}
	if v == plan.VariantAdmin {
		if role != models.RoleAdmin {
			return "", 0, fiber.NewError(fiber.StatusForbidden, "Only admins can use the admin plan")
		}
		return v, userID, nil
	}
	ownerID, err := auth.ResolveAgentIDFromQuery(c)
	if err != nil {
		return "", 0, err
	}
	return v, ownerID, nil
}

// planError maps engine errors to HTTP responses. Field validation failures
// are 422 with a stable code so clients can keep the previous value.
func planError(c *fiber.Ctx, err error) error {
	var verr *plan.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Error(),
			"code":  verr.Code(),
			"field": verr.Field,
			"agent": verr.Agent,
		})
	}
	switch {
	case errors.Is(err, plan.ErrUnsupportedTimeFrame):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "code": "UnsupportedTimeFrame"})
	case errors.Is(err, plan.ErrDuplicateAgent):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "code": "DuplicateAgent"})
	case errors.Is(err, plan.ErrEmptyAgentName):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error(), "code": "EmptyAgentName"})
	case errors.Is(err, plan.ErrAgentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "code": "AgentNotFound"})
	case errors.Is(err, plan.ErrUnknownVariant):
		return fiber.NewError(fiber.StatusNotFound, "Unknown plan variant")
	}
	return err
}

func (s *Store) respond(c *fiber.Ctx, rec *models.BusinessPlan, p *plan.Plan) error {
	proj, err := s.Projection(c.UserContext(), rec, p)
	if err != nil {
		return planError(c, err)
	}
	var updatedAt *string
	if rec.ID != 0 {
		u := rec.UpdatedAt.Format("2006-01-02 15:04:05")
		updatedAt = &u
	}
	return c.JSON(PlanResponse{
		ID:         rec.ID,
		OwnerID:    rec.OwnerID,
		Revision:   rec.Revision,
		Plan:       p,
		Projection: proj,
		UpdatedAt:  updatedAt,
	})
}

// mutate loads the plan, applies fn, saves and audits. fn errors leave the
// stored plan untouched.
func (s *Store) mutate(c *fiber.Ctx, description string, fn func(p *plan.Plan) error) error {
	v, ownerID, err := resolveOwner(c)
	if err != nil {
		return err
	}
	rec, p, err := s.Load(ownerID, v)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not load plan")
	}

	before := p.Clone()
	if err := fn(p); err != nil {
		return planError(c, err)
	}

	if err := s.Save(c.UserContext(), rec, p); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not save plan")
	}

	userID, userName, err := auth.UserInfo(c)
	if err == nil {
		owner := rec.OwnerID
		audit.Record(audit.LogOptions{
			AgentID:     &owner,
			UserID:      userID,
			UserName:    userName,
			EntityType:  audit.EntityBusinessPlan,
			EntityID:    rec.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s plan: %s", v, description),
			Before:      before,
			After:       p,
		})
	}

	return s.respond(c, rec, p)
}

// GET /api/business-plans/:variant?agent_id=2
func GetPlanHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ownerID, err := resolveOwner(c)
		if err != nil {
			return err
		}
		rec, p, err := s.Load(ownerID, v)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load plan")
		}
		return s.respond(c, rec, p)
	}
}

// PUT /api/business-plans/:variant
func ReplacePlanHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body plan.Plan
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		return s.mutate(c, "replaced", func(p *plan.Plan) error {
			body.Variant = p.Variant
			if body.Aggregate.TimeFrame == "" {
				body.Aggregate.TimeFrame = p.Variant.DefaultTimeFrame()
			}
			if body.Agents == nil {
				body.Agents = []plan.AgentFinancialInput{}
			}
			if err := body.Validate(); err != nil {
				return err
			}
			*p = *body.Clone()
			return nil
		})
	}
}

// PATCH /api/business-plans/:variant/fields
func UpdateFieldHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateFieldRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		desc := fmt.Sprintf("%s set", body.Field)
		if body.Agent != "" {
			desc = fmt.Sprintf("%s set for %s", body.Field, body.Agent)
		}
		return s.mutate(c, desc, func(p *plan.Plan) error {
			return p.UpdateInput(body.Agent, plan.Field(body.Field), body.Value)
		})
	}
}

// POST /api/business-plans/:variant/agents
func AddAgentHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddAgentRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		return s.mutate(c, fmt.Sprintf("agent %s added", body.Name), func(p *plan.Plan) error {
			return p.AddAgent(body.Name)
		})
	}
}

// DELETE /api/business-plans/:variant/agents/:name
func RemoveAgentHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil || name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid agent name")
		}
		return s.mutate(c, fmt.Sprintf("agent %s removed", name), func(p *plan.Plan) error {
			return p.RemoveAgent(name)
		})
	}
}

// PUT /api/business-plans/:variant/time-frame
func SetTimeFrameHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TimeFrameRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		return s.mutate(c, fmt.Sprintf("time frame %s", body.TimeFrame), func(p *plan.Plan) error {
			return p.SetTimeFrame(plan.TimeFrame(body.TimeFrame))
		})
	}
}

// GET /api/business-plans/:variant/export
func ExportPlanHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ownerID, err := resolveOwner(c)
		if err != nil {
			return err
		}
		rec, p, err := s.Load(ownerID, v)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load plan")
		}
		proj, err := s.Projection(c.UserContext(), rec, p)
		if err != nil {
			return planError(c, err)
		}

		var buf bytes.Buffer
		title := fmt.Sprintf("Business plan (%s, %s)", v, p.Aggregate.TimeFrame)
		if err := report.WriteBusinessPlan(&buf, title, p, proj); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
		}

		c.Set(fiber.HeaderContentType, report.XLSXContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="business-plan-%s-%d.xlsx"`, v, ownerID))
		return c.Send(buf.Bytes())
	}
}

// GET /api/business-plans/schema
func SchemaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"fields": plan.Schema,
			"time_frames": fiber.Map{
				string(plan.VariantAgent): plan.VariantAgent.TimeFrames(),
				string(plan.VariantAdmin): plan.VariantAdmin.TimeFrames(),
			},
		})
	}
}
