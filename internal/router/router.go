package router

import (
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/audit"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/config"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/handler"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/middleware"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/numbering"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the shared infrastructure handles built by the composition root.
// Store and MailCB may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  *infra.ObjectStore
	MailCB *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/MinIO
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(deps.Redis, "api", 1000, time.Minute)) // 1000 req/min per IP

	db, rdb := deps.DB, deps.Redis
	clk := clock.System()

	// ── Repositories ─────────────────────────────────────────────────────────
	contractRepo := repository.NewContractRepository(db)
	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	typeRepo := repository.NewTypeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	recorder := audit.NewRecorder(historyRepo, clk)
	allocator := numbering.NewAllocator(clk)

	// The report service owns the dashboard cache; every mutation that can
	// change the dashboard invalidates it.
	reportSvc := service.NewReportService(reportRepo, reminderRepo, historyRepo, rdb, cfg.DashboardCacheTTL, clk)

	// A nil *ObjectStore must stay a nil interface.
	var blobs service.BlobStore
	if deps.Store != nil {
		blobs = deps.Store
	}

	authSvc := service.NewAuthService(userRepo, cfg)
	contractSvc := service.NewContractService(contractRepo, statusRepo, typeRepo, userRepo, recorder, allocator, reportSvc, clk, cfg.NumberingMaxAttempts)
	referenceSvc := service.NewReferenceService(statusRepo, typeRepo, reportSvc)
	partySvc := service.NewPartyService(partyRepo, contractRepo, userRepo, recorder)
	reminderSvc := service.NewReminderService(reminderRepo, contractRepo, userRepo, reportSvc, clk)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, contractRepo, blobs, recorder, clk, cfg.AttachmentMaxBytes)
	historySvc := service.NewHistoryService(historyRepo, contractRepo)
	exportSvc := service.NewExportService(contractRepo, historyRepo, clk)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	contractsH := handler.NewContractsHandler(contractSvc, exportSvc)
	historyH := handler.NewHistoryHandler(historySvc)
	partiesH := handler.NewPartiesHandler(partySvc)
	remindersH := handler.NewRemindersHandler(reminderSvc)
	attachmentsH := handler.NewAttachmentsHandler(attachmentSvc, cfg.AttachmentMaxBytes)
	reportsH := handler.NewReportsHandler(reportSvc)
	referenceH := handler.NewReferenceHandler(referenceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.MailCB))
	r.GET("/v1/health", handler.Health(db, rdb, deps.MailCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Roles: viewer reads, manager also writes contracts and their children,
	// admin also manages reference data and users.
	anyRole := middleware.RequireRole(model.RoleViewer, model.RoleManager, model.RoleAdmin)
	writers := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		contracts := v1.Group("/contracts")
		{
			contracts.GET("", anyRole, contractsH.List)
			contracts.POST("", writers, contractsH.Create)
			contracts.GET("/number-availability", anyRole, contractsH.NumberAvailability)
			contracts.GET("/export", anyRole, contractsH.Export)
			contracts.GET("/:id", anyRole, contractsH.Get)
			contracts.PUT("/:id", writers, contractsH.Update)
			contracts.DELETE("/:id", writers, contractsH.Delete)
			contracts.GET("/:id/pdf", anyRole, contractsH.PDF)
			contracts.GET("/:id/history", anyRole, historyH.ListForContract)

			contracts.GET("/:id/parties", anyRole, partiesH.List)
			contracts.POST("/:id/parties", writers, partiesH.Add)
			contracts.PUT("/:id/parties/:party_id", writers, partiesH.Update)
			contracts.DELETE("/:id/parties/:party_id", writers, partiesH.Remove)

			contracts.GET("/:id/attachments", anyRole, attachmentsH.List)
			contracts.POST("/:id/attachments", writers, attachmentsH.Upload)
			contracts.GET("/:id/documents/:kind", anyRole, attachmentsH.Document)
			contracts.PUT("/:id/documents/:kind", writers, attachmentsH.UploadDocument)
		}

		v1.GET("/attachments/:id/download", anyRole, attachmentsH.Download)
		v1.DELETE("/attachments/:id", writers, attachmentsH.Delete)

		v1.GET("/history", anyRole, historyH.List)
		v1.GET("/history/:id", anyRole, historyH.Get)

		reminders := v1.Group("/reminders")
		{
			reminders.GET("", anyRole, remindersH.List)
			reminders.POST("", writers, remindersH.Create)
			reminders.PUT("/:id", writers, remindersH.Update)
			reminders.DELETE("/:id", writers, remindersH.Delete)
			reminders.POST("/:id/toggle", writers, remindersH.Toggle)
		}

		v1.GET("/dashboard", anyRole, reportsH.Dashboard)
		v1.GET("/reports/expiration", anyRole, reportsH.Expiration)
		v1.GET("/reports/value", anyRole, reportsH.Value)

		// Reference data: everyone reads, admin writes
		v1.GET("/statuses", anyRole, referenceH.ListStatuses)
		v1.GET("/types", anyRole, referenceH.ListTypes)
		ref := v1.Group("", adminOnly)
		{
			ref.POST("/statuses", referenceH.CreateStatus)
			ref.PUT("/statuses/:id", referenceH.UpdateStatus)
			ref.DELETE("/statuses/:id", referenceH.DeleteStatus)
			ref.POST("/types", referenceH.CreateType)
			ref.PUT("/types/:id", referenceH.UpdateType)
			ref.DELETE("/types/:id", referenceH.DeleteType)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	return r
}
