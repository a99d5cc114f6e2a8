package activity

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/database"
	"agency-backend/internal/models"
	"agency-backend/internal/report"
	"agency-backend/internal/validate"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type CreateActivityRequest struct {
	AgentID    *uint  `json:"agent_id"`
	Kind       string `json:"kind" validate:"required,oneof=door_knock phone_call appraisal"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	PropertyID *uint  `json:"property_id"`
	ContactID  *uint  `json:"contact_id"`
	Address    string `json:"address" validate:"max=255"`
	Outcome    string `json:"outcome" validate:"max=100"`
	Notes      string `json:"notes" validate:"max=1000"`
}

type UpdateActivityRequest struct {
	Kind       *string `json:"kind" validate:"omitempty,oneof=door_knock phone_call appraisal"`
	Date       *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PropertyID *uint   `json:"property_id"`
	ContactID  *uint   `json:"contact_id"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	Outcome    *string `json:"outcome" validate:"omitempty,max=100"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

type SummaryResponse struct {
	Period  Period                  `json:"period"`
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Periods []report.ActivityPeriod `json:"periods"`
	Totals  report.ActivityPeriod   `json:"totals"`
}

func record(c *fiber.Ctx, action models.AuditAction, a models.Activity, desc string, before, after any) {
	userID, userName, err := auth.UserInfo(c)
	if err != nil {
		return
	}
	agentID := a.AgentID
	audit.Record(audit.LogOptions{
		AgentID:     &agentID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  audit.EntityActivity,
		EntityID:    a.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

// checkLinks makes sure linked property and contact belong to the same agent.
func checkLinks(agentID uint, propertyID, contactID *uint) error {
	if propertyID != nil {
		var count int64
		database.DB.Model(&models.Property{}).Where("id = ? AND agent_id = ?", *propertyID, agentID).Count(&count)
		if count == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "property_id does not belong to this agent")
		}
	}
	if contactID != nil {
		var count int64
		database.DB.Model(&models.Contact{}).Where("id = ? AND agent_id = ?", *contactID, agentID).Count(&count)
		if count == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "contact_id does not belong to this agent")
		}
	}
	return nil
}

func find(c *fiber.Ctx) (models.Activity, error) {
	var a models.Activity
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return a, fiber.NewError(fiber.StatusBadRequest, "Invalid activity id")
	}
	if err := database.DB.First(&a, "id = ?", id).Error; err != nil {
		return a, fiber.NewError(fiber.StatusNotFound, "Activity not found")
	}
	if err := auth.CanAccess(c, a.AgentID); err != nil {
		return a, err
	}
	return a, nil
}

// dateRange reads ?from=&to=, defaulting to the last 30 days.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -29)

	if s := c.Query("from"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = t
	}
	if to.Before(from) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
	}
	return from, to, nil
}

func loadRange(c *fiber.Ctx, from, to time.Time) ([]models.Activity, error) {
	agentID, err := auth.AgentFilter(c)
	if err != nil {
		return nil, err
	}
	dbq := database.DB.Where("date >= ? AND date < ?", from, to.AddDate(0, 0, 1))
	if agentID != nil {
		dbq = dbq.Where("agent_id = ?", *agentID)
	}
	if k := c.Query("kind"); k != "" {
		if !models.ActivityKind(k).Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid kind")
		}
		dbq = dbq.Where("kind = ?", k)
	}
	var list []models.Activity
	if err := dbq.Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not list activities")
	}
	return list, nil
}

// POST /api/activities
func CreateActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateActivityRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		agentID, err := auth.ResolveAgentID(c, body.AgentID)
		if err != nil {
			return err
		}
		if err := checkLinks(agentID, body.PropertyID, body.ContactID); err != nil {
			return err
		}
		date, _ := time.Parse(dateLayout, body.Date)

		a := models.Activity{
			AgentID:    agentID,
			Kind:       models.ActivityKind(body.Kind),
			Date:       date,
			PropertyID: body.PropertyID,
			ContactID:  body.ContactID,
			Address:    strings.TrimSpace(body.Address),
			Outcome:    strings.TrimSpace(body.Outcome),
			Notes:      strings.TrimSpace(body.Notes),
		}
		if err := database.DB.Create(&a).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save activity")
		}

		record(c, models.AuditActionCreate, a, fmt.Sprintf("Activity logged: %s on %s", a.Kind, body.Date), nil, a)
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// GET /api/activities?from=&to=&kind=&agent_id=
func ListActivitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := dateRange(c)
		if err != nil {
			return err
		}
		list, err := loadRange(c, from, to)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// PUT /api/activities/:id
func UpdateActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := find(c)
		if err != nil {
			return err
		}
		var body UpdateActivityRequest
		if err := validate.Body(c, &body); err != nil {
			return err
		}
		if err := checkLinks(a.AgentID, body.PropertyID, body.ContactID); err != nil {
			return err
		}

		before := a
		if body.Kind != nil {
			a.Kind = models.ActivityKind(*body.Kind)
		}
		if body.Date != nil {
			a.Date, _ = time.Parse(dateLayout, *body.Date)
		}
		if body.PropertyID != nil {
			a.PropertyID = body.PropertyID
		}
		if body.ContactID != nil {
			a.ContactID = body.ContactID
		}
		if body.Address != nil {
			a.Address = strings.TrimSpace(*body.Address)
		}
		if body.Outcome != nil {
			a.Outcome = strings.TrimSpace(*body.Outcome)
		}
		if body.Notes != nil {
			a.Notes = strings.TrimSpace(*body.Notes)
		}

		if err := database.DB.Save(&a).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update activity")
		}
		record(c, models.AuditActionUpdate, a, fmt.Sprintf("Activity updated: %s", a.Kind), before, a)
		return c.JSON(a)
	}
}

// DELETE /api/activities/:id
func DeleteActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := find(c)
		if err != nil {
			return err
		}
		if err := database.DB.Delete(&models.Activity{}, "id = ?", a.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete activity")
		}
		record(c, models.AuditActionDelete, a, fmt.Sprintf("Activity deleted: %s on %s", a.Kind, a.Date.Format(dateLayout)), a, nil)
		return c.JSON(fiber.Map{"message": "Activity deleted"})
	}
}

func summarize(c *fiber.Ctx) (SummaryResponse, error) {
	period, err := ParsePeriod(c.Query("period"))
	if err != nil {
		return SummaryResponse{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	from, to, err := dateRange(c)
	if err != nil {
		return SummaryResponse{}, err
	}
	if err := CheckRange(from, to, period); err != nil {
		return SummaryResponse{}, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("%s summaries cover at most %d days", period, MaxSpanDays(period)))
	}
	list, err := loadRange(c, from, to)
	if err != nil {
		return SummaryResponse{}, err
	}

	periods := Summarize(list, from, to, period)
	totals := report.ActivityPeriod{Label: "Total"}
	for _, p := range periods {
		totals.DoorKnocks += p.DoorKnocks
		totals.PhoneCalls += p.PhoneCalls
		totals.Appraisals += p.Appraisals
	}
	return SummaryResponse{
		Period:  period,
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
		Periods: periods,
		Totals:  totals,
	}, nil
}

// GET /api/activities/summary?period=weekly&from=&to=&agent_id=
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := summarize(c)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// GET /api/activities/summary/export?period=&from=&to=&agent_id=
func ExportSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := summarize(c)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Activity %s, %s to %s", resp.Period, resp.From, resp.To)

		var buf bytes.Buffer
		if err := report.WriteActivitySummary(&buf, title, resp.Periods); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
		}
		c.Set(fiber.HeaderContentType, report.XLSXContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="activity-%s-%s.xlsx"`, resp.From, resp.To))
		return c.Send(buf.Bytes())
	}
}
