package businessplan

import (
	"fmt"
	"strings"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/plan"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CreateSnapshotRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type SnapshotResponse struct {
	ID                      uint             `json:"id"`
	PlanID                  uint             `json:"plan_id"`
	OwnerID                 uint             `json:"owner_id"`
	Variant                 string           `json:"variant"`
	TimeFrame               string           `json:"time_frame"`
	Title                   string           `json:"title"`
	Revision                int              `json:"revision"`
	TotalNetCommission      float64          `json:"total_net_commission"`
	TotalBusinessEarnings   float64          `json:"total_business_earnings"`
	TotalAgentEarnings      float64          `json:"total_agent_earnings"`
	AdditionalExpensesTotal float64          `json:"additional_expenses_total"`
	Plan                    *plan.Plan       `json:"plan,omitempty"`
	Projection              *plan.Projection `json:"projection,omitempty"`
	CreatedAt               string           `json:"created_at"`
}

// NewSnapshot freezes p and its projection. The record is not persisted.
func NewSnapshot(rec *models.BusinessPlan, p *plan.Plan, proj plan.Projection, title string, createdBy uint) (models.PlanSnapshot, error) {
	doc, err := EncodeDocument(p)
	if err != nil {
		return models.PlanSnapshot{}, err
	}
	frozen, err := encodeProjection(proj)
	if err != nil {
		return models.PlanSnapshot{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("%s plan, %s, revision %d", rec.Variant, proj.TimeFrame, rec.Revision)
	}
	return models.PlanSnapshot{
		PlanID:                  rec.ID,
		OwnerID:                 rec.OwnerID,
		Variant:                 rec.Variant,
		TimeFrame:               string(proj.TimeFrame),
		Title:                   title,
		Revision:                rec.Revision,
		CreatedByID:             createdBy,
		TotalNetCommission:      proj.Totals.NetCommission,
		TotalBusinessEarnings:   proj.Totals.BusinessEarnings,
		TotalAgentEarnings:      proj.Totals.AgentEarnings,
		AdditionalExpensesTotal: proj.Totals.AdditionalExpensesTotal,
		Document:                doc,
		Projection:              frozen,
	}, nil
}

func snapshotResponse(s models.PlanSnapshot, full bool) SnapshotResponse {
	resp := SnapshotResponse{
		ID:                      s.ID,
		PlanID:                  s.PlanID,
		OwnerID:                 s.OwnerID,
		Variant:                 s.Variant,
		TimeFrame:               s.TimeFrame,
		Title:                   s.Title,
		Revision:                s.Revision,
		TotalNetCommission:      s.TotalNetCommission,
		TotalBusinessEarnings:   s.TotalBusinessEarnings,
		TotalAgentEarnings:      s.TotalAgentEarnings,
		AdditionalExpensesTotal: s.AdditionalExpensesTotal,
		CreatedAt:               s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if !full {
		return resp
	}
	if p, err := DecodeDocument(s.Document, plan.Variant(s.Variant)); err == nil {
		resp.Plan = p
	}
	if proj, err := decodeProjection(s.Projection); err == nil {
		resp.Projection = &proj
	}
	return resp
}

// POST /api/business-plans/:variant/snapshots
func CreateSnapshotHandler(s *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSnapshotRequest
		if len(c.Body()) > 0 {
			if err := validate.Body(c, &body); err != nil {
				return err
			}
		}

		v, ownerID, err := resolveOwner(c)
		if err != nil {
			return err
		}
		rec, p, err := s.Load(ownerID, v)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load plan")
		}
		if rec.ID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Save the plan before taking a snapshot")
		}
		proj, err := s.Projection(c.UserContext(), rec, p)
		if err != nil {
			return planError(c, err)
		}

		userID, userName, err := auth.UserInfo(c)
		if err != nil {
			return err
		}

		snap, err := NewSnapshot(rec, p, proj, body.Title, userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build snapshot")
		}
		if err := database.DB.Create(&snap).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save snapshot")
		}

		owner := rec.OwnerID
		audit.Record(audit.LogOptions{
			AgentID:     &owner,
			UserID:      userID,
			UserName:    userName,
			EntityType:  audit.EntitySnapshot,
			EntityID:    snap.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Snapshot taken: %s", snap.Title),
			After:       snapshotResponse(snap, false),
		})

		return c.Status(fiber.StatusCreated).JSON(snapshotResponse(snap, true))
	}
}

// GET /api/business-plans/:variant/snapshots
func ListSnapshotsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ownerID, err := resolveOwner(c)
		if err != nil {
			return err
		}
		var snaps []models.PlanSnapshot
		if err := database.DB.
			Where("owner_id = ? AND variant = ?", ownerID, string(v)).
			Order("created_at DESC").
			Find(&snaps).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list snapshots")
		}
		resp := make([]SnapshotResponse, 0, len(snaps))
		for _, s := range snaps {
			resp = append(resp, snapshotResponse(s, false))
		}
		return c.JSON(resp)
	}
}

// GET /api/business-plans/:variant/snapshots/:id
func GetSnapshotHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, ownerID, err := resolveOwner(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid snapshot id")
		}
		var snap models.PlanSnapshot
		if err := database.DB.
			Where("id = ? AND owner_id = ? AND variant = ?", id, ownerID, string(v)).
			First(&snap).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Snapshot not found")
		}
		return c.JSON(snapshotResponse(snap, true))
	}
}
