package businessplan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency-backend/internal/audit"
	"agency-backend/internal/cache"
	"agency-backend/internal/database/dbtest"
	"agency-backend/internal/models"
	"agency-backend/internal/plan"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStore_LoadSave(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.User(t, db, "Jane", models.RoleAgent)
	mem := cache.NewMemoryCache()
	s := NewStore(mem, time.Minute)
	ctx := context.Background()

	rec, p, err := s.Load(owner.ID, plan.VariantAgent)
	require.NoError(t, err)
	assert.Zero(t, rec.ID)
	assert.Empty(t, p.Agents)

	require.NoError(t, p.AddAgent("Jane"))
	require.NoError(t, s.Save(ctx, rec, p))
	assert.NotZero(t, rec.ID)
	assert.Equal(t, 1, rec.Revision)

	rec, got, err := s.Load(owner.ID, plan.VariantAgent)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Revision)
	assert.Equal(t, p, got)

	_, err = s.Projection(ctx, rec, got)
	require.NoError(t, err)
	oldKey := cacheKey(plan.VariantAgent, rec.Document)
	_, err = mem.Get(ctx, oldKey)
	require.NoError(t, err)

	require.NoError(t, got.UpdateInput("Jane", plan.FieldCommissionAmount, plan.Float(1000)))
	require.NoError(t, s.Save(ctx, rec, got))

	// The replaced document's projection is evicted.
	_, err = mem.Get(ctx, oldKey)
	assert.ErrorIs(t, err, cache.ErrMiss)

	var stored models.BusinessPlan
	require.NoError(t, db.First(&stored, rec.ID).Error)
	assert.Equal(t, 2, stored.Revision)

	var count int64
	require.NoError(t, db.Model(&models.BusinessPlan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The admin plan of the same owner is a separate record.
	adminRec, _, err := s.Load(owner.ID, plan.VariantAdmin)
	require.NoError(t, err)
	assert.Zero(t, adminRec.ID)
}

func planApp(s *Store, userID uint, role models.UserRole) *fiber.App {
	app := fiber.New()
	app.Use(withIdentity(userID, role))
	app.Get("/plans/:variant", GetPlanHandler(s))
	app.Patch("/plans/:variant/fields", UpdateFieldHandler(s))
	app.Post("/plans/:variant/agents", AddAgentHandler(s))
	app.Post("/plans/:variant/snapshots", CreateSnapshotHandler(s))
	return app
}

func send(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func storedPlan(t *testing.T, db *gorm.DB, ownerID uint) models.BusinessPlan {
	t.Helper()
	var rec models.BusinessPlan
	require.NoError(t, db.Where("owner_id = ? AND variant = ?", ownerID, "agent").First(&rec).Error)
	return rec
}

func TestUpdateField_RejectedValueKeepsStoredPlan(t *testing.T) {
	db := dbtest.Open(t)
	agent := dbtest.User(t, db, "Jane", models.RoleAgent)
	app := planApp(NewStore(cache.NewMemoryCache(), time.Minute), agent.ID, models.RoleAgent)

	status, _ := send(t, app, "POST", "/plans/agent/agents", `{"name":"Jane"}`)
	require.Equal(t, fiber.StatusOK, status)
	status, body := send(t, app, "PATCH", "/plans/agent/fields",
		`{"agent":"Jane","field":"commission_amount","value":1000}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2.0, body["revision"])

	before := storedPlan(t, db, agent.ID)

	status, body = send(t, app, "PATCH", "/plans/agent/fields",
		`{"agent":"Jane","field":"business_commission_percentage","value":150}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "PercentageOutOfRange", body["code"])
	assert.Equal(t, "business_commission_percentage", body["field"])

	status, body = send(t, app, "PATCH", "/plans/agent/fields",
		`{"agent":"Jane","field":"net_commission","value":1}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "ReadOnlyField", body["code"])

	status, _ = send(t, app, "POST", "/plans/agent/agents", `{"name":"Jane"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	after := storedPlan(t, db, agent.ID)
	assert.Equal(t, before.Revision, after.Revision)
	assert.JSONEq(t, before.Document, after.Document)

	// Only the two accepted changes were audited.
	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("entity_type = ?", audit.EntityBusinessPlan).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
}

func TestGetPlan_ServesStoredDocument(t *testing.T) {
	db := dbtest.Open(t)
	agent := dbtest.User(t, db, "Jane", models.RoleAgent)
	app := planApp(NewStore(cache.NewMemoryCache(), time.Minute), agent.ID, models.RoleAgent)

	status, body := send(t, app, "GET", "/plans/agent", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0.0, body["id"])

	send(t, app, "POST", "/plans/agent/agents", `{"name":"Jane"}`)
	for _, amount := range []float64{1000, 9000} {
		status, _ = send(t, app, "PATCH", "/plans/agent/fields",
			fmt.Sprintf(`{"agent":"Jane","field":"commission_amount","value":%v}`, amount))
		require.Equal(t, fiber.StatusOK, status)

		status, body = send(t, app, "GET", "/plans/agent", "")
		require.Equal(t, fiber.StatusOK, status)
		totals := body["projection"].(map[string]any)["totals"].(map[string]any)
		assert.Equal(t, amount, totals["net_commission"])
	}
}

func TestCreateSnapshot_RequiresSavedPlan(t *testing.T) {
	db := dbtest.Open(t)
	agent := dbtest.User(t, db, "Jane", models.RoleAgent)
	app := planApp(NewStore(cache.NewMemoryCache(), time.Minute), agent.ID, models.RoleAgent)

	status, _ := send(t, app, "POST", "/plans/agent/snapshots", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	send(t, app, "POST", "/plans/agent/agents", `{"name":"Jane"}`)
	send(t, app, "PATCH", "/plans/agent/fields", `{"agent":"Jane","field":"commission_amount","value":1000}`)

	status, _ = send(t, app, "POST", "/plans/agent/snapshots", `{"title":"March"}`)
	require.Equal(t, fiber.StatusCreated, status)

	var snap models.PlanSnapshot
	require.NoError(t, db.First(&snap).Error)
	assert.Equal(t, "March", snap.Title)
	assert.Equal(t, 2, snap.Revision)
	assert.Equal(t, 1000.0, snap.TotalNetCommission)
}
