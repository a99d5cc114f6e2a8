package main

import (
	"context"
	"log"
	"strings"
	"time"

	"agency-backend/internal/activity"
	"agency-backend/internal/agent"
	"agency-backend/internal/audit"
	"agency-backend/internal/auth"
	"agency-backend/internal/businessplan"
	"agency-backend/internal/cache"
	"agency-backend/internal/config"
	"agency-backend/internal/contact"
	"agency-backend/internal/database"
	"agency-backend/internal/logging"
	"agency-backend/internal/models"
	"agency-backend/internal/property"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// newCache uses Redis when configured and reachable, otherwise an in-process cache.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache()
	}
	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Printf("[WARN] redis %s unreachable, using in-memory cache: %v", cfg.RedisAddr, err)
		_ = rc.Close()
		return cache.NewMemoryCache()
	}
	log.Println("Projection cache: redis", cfg.RedisAddr)
	return rc
}

func main() {
	cfg := config.Load()
	closer := logging.Setup(cfg)
	defer closer.Close()

	database.Init(cfg)

	plans := businessplan.NewStore(newCache(cfg), cfg.ProjectionCacheTTL)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(logger.New(logger.Config{Output: log.Writer()}))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg), auth.RequireActive())

	protected.Get("/auth/me", auth.MeHandler())

	// Admin only
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/agents", agent.CreateAgentHandler())
	adminRoutes.Get("/agents", agent.ListAgentsHandler())
	adminRoutes.Get("/agents/:id", agent.GetAgentHandler())
	adminRoutes.Put("/agents/:id", agent.UpdateAgentHandler())
	adminRoutes.Delete("/agents/:id", agent.DeleteAgentHandler())

	// Business plans; :variant is "agent" or "admin"
	protected.Get("/business-plans/schema", businessplan.SchemaHandler())
	bp := protected.Group("/business-plans/:variant")
	bp.Get("/", businessplan.GetPlanHandler(plans))
	bp.Put("/", businessplan.ReplacePlanHandler(plans))
	bp.Patch("/fields", businessplan.UpdateFieldHandler(plans))
	bp.Post("/agents", businessplan.AddAgentHandler(plans))
	bp.Delete("/agents/:name", businessplan.RemoveAgentHandler(plans))
	bp.Put("/time-frame", businessplan.SetTimeFrameHandler(plans))
	bp.Get("/export", businessplan.ExportPlanHandler(plans))
	bp.Post("/snapshots", businessplan.CreateSnapshotHandler(plans))
	bp.Get("/snapshots", businessplan.ListSnapshotsHandler())
	bp.Get("/snapshots/:id", businessplan.GetSnapshotHandler())

	// Properties
	protected.Post("/properties", property.CreatePropertyHandler())
	protected.Get("/properties", property.ListPropertiesHandler())
	protected.Get("/properties/:id", property.GetPropertyHandler())
	protected.Put("/properties/:id", property.UpdatePropertyHandler())
	protected.Delete("/properties/:id", property.DeletePropertyHandler())

	// Contacts; static paths before :id
	protected.Post("/contacts/import", contact.ImportContactsHandler())
	protected.Delete("/contacts/import/:batch", contact.DeleteImportBatchHandler())
	protected.Get("/contacts/export", contact.ExportContactsHandler())
	protected.Post("/contacts", contact.CreateContactHandler())
	protected.Get("/contacts", contact.ListContactsHandler())
	protected.Get("/contacts/:id", contact.GetContactHandler())
	protected.Put("/contacts/:id", contact.UpdateContactHandler())
	protected.Delete("/contacts/:id", contact.DeleteContactHandler())

	// Activities
	protected.Get("/activities/summary", activity.SummaryHandler())
	protected.Get("/activities/summary/export", activity.ExportSummaryHandler())
	protected.Post("/activities", activity.CreateActivityHandler())
	protected.Get("/activities", activity.ListActivitiesHandler())
	protected.Put("/activities/:id", activity.UpdateActivityHandler())
	protected.Delete("/activities/:id", activity.DeleteActivityHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
