package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/admission-bridge/database"
	"github.com/sahilchouksey/admission-bridge/handlers"
	admin_handlers "github.com/sahilchouksey/admission-bridge/handlers/admin"
	auth_handlers "github.com/sahilchouksey/admission-bridge/handlers/auth"
	college_handlers "github.com/sahilchouksey/admission-bridge/handlers/college"
	directory_handlers "github.com/sahilchouksey/admission-bridge/handlers/directory"
	notification_handlers "github.com/sahilchouksey/admission-bridge/handlers/notification"
	shortlist_handlers "github.com/sahilchouksey/admission-bridge/handlers/shortlist"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/cache"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"gorm.io/gorm"
)

// Services are the domain services the routes are served by
type Services struct {
	Shortlists    *services.ShortlistService
	Directory     *services.DirectoryService
	Profiles      *services.CollegeProfileService
	ProfileMedia  *services.ProfileMediaService
	Admissions    *services.AdmissionService
	Notifications *services.NotificationService
}

// Config carries everything SetupRoutes needs
type Config struct {
	Store    database.Storage
	DB       *gorm.DB
	JWT      *auth.JWTManager
	Cache    *cache.RedisCache // optional; enables brute force protection
	Services Services
	Security middleware.SecurityConfig
	// MediaDir is served under MediaURL when uploads are kept on local disk
	MediaDir string
	MediaURL string
	Log      *utils.Logger
}

func SetupRoutes(app *fiber.App, cfg Config) {
	db := cfg.DB
	log := cfg.Log
	svc := cfg.Services

	// Brute force protection is disabled without Redis
	var bruteForceProtection *middleware.BruteForceProtection
	if cfg.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(cfg.Cache)
	} else {
		log.Warn("redis not configured, brute force protection disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT, db)

	authHandler := auth_handlers.NewAuthHandler(db, cfg.JWT, bruteForceProtection, log)
	shortlistHandler := shortlist_handlers.NewShortlistHandler(svc.Shortlists, svc.Profiles, log)
	userHandler := admin_handlers.NewUserHandler(db, svc.Admissions, log)
	collegeHandler := college_handlers.NewCollegeHandler(svc.Profiles, svc.ProfileMedia, svc.Shortlists, log)
	directoryHandler := directory_handlers.NewDirectoryHandler(svc.Directory, log)
	notificationHandler := notification_handlers.NewNotificationHandler(svc.Notifications, log)

	middleware.SetupSecurity(app, cfg.Security)

	if cfg.MediaDir != "" && cfg.MediaURL != "" {
		app.Static(cfg.MediaURL, cfg.MediaDir, fiber.Static{
			MaxAge: int((24 * time.Hour).Seconds()),
		})
	}

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(cfg.Store))

	// API v1 group
	api := app.Group("/api/v1")
	api.Get("/ping", handlers.HandleCheckHealth(cfg.Store))

	requireCollege := []fiber.Handler{authMiddleware.Required(), authMiddleware.RequireRole(model.RoleCollege)}
	requireUser := []fiber.Handler{authMiddleware.Required(), authMiddleware.RequireRole(model.RoleStudent, model.RoleAdmin)}

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/college/register", authHandler.RegisterCollege)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
		authGroup.Post("/college/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.LoginCollege)
	} else {
		authGroup.Post("/login", authHandler.Login)
		authGroup.Post("/college/login", authHandler.LoginCollege)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/logout-all", authMiddleware.Required(), authHandler.LogoutAll)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Profile routes (students and admins)
	profileGroup := api.Group("/profile", requireUser...)
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// ==================== Shortlists ====================

	shortlists := api.Group("/shortlists", authMiddleware.Required())
	shortlists.Get("/my-shortlists", authMiddleware.RequireRole(model.RoleStudent), shortlistHandler.MyShortlists)
	shortlists.Get("/", authMiddleware.RequireRole(model.RoleStudent, model.RoleAdmin), shortlistHandler.List)
	shortlists.Post("/", authMiddleware.RequireRole(model.RoleStudent), shortlistHandler.Add)
	shortlists.Post("/toggle", authMiddleware.RequireRole(model.RoleStudent), shortlistHandler.Toggle)
	shortlists.Get("/stats/aggregate", authMiddleware.RequireRole(model.RoleAdmin), shortlistHandler.Stats)
	shortlists.Get("/college", authMiddleware.RequireRole(model.RoleCollege, model.RoleAdmin), shortlistHandler.CollegeInterest)
	shortlists.Get("/college/:collegeAdminId", authMiddleware.RequireRole(model.RoleCollege, model.RoleAdmin), shortlistHandler.CollegeInterest)
	shortlists.Delete("/:collegeId", authMiddleware.RequireRole(model.RoleStudent), shortlistHandler.Remove)

	// ==================== Admission workflow (admin) ====================

	users := api.Group("/users", authMiddleware.RequireAdmin())
	users.Get("/", userHandler.ListUsers)
	users.Post("/forward",
		middleware.AdminAuditLog(db, log, "student_forward", "shortlists"),
		userHandler.Forward)
	users.Get("/:studentId", userHandler.GetUser)
	users.Put("/:studentId/finalize",
		middleware.AdminAuditLog(db, log, "student_finalize", "users"),
		userHandler.Finalize)

	// ==================== College accounts ====================

	colleges := api.Group("/college-admins", requireCollege...)
	colleges.Get("/forwarded-students", collegeHandler.ForwardedStudents)
	colleges.Post("/profile", collegeHandler.CreateProfile)
	colleges.Get("/profile", collegeHandler.GetProfile)
	colleges.Put("/profile", collegeHandler.UpdateProfile)
	colleges.Delete("/profile", collegeHandler.DeleteProfile)
	colleges.Post("/profile/logo", collegeHandler.UploadLogo)
	colleges.Post("/profile/cover-photo", collegeHandler.UploadCoverPhoto)

	// ==================== Public directory ====================

	directory := api.Group("/colleges")
	directory.Get("/", directoryHandler.ListColleges)
	directory.Get("/:id", directoryHandler.GetCollege)

	// ==================== Notifications ====================

	notifications := api.Group("/notifications", requireUser...)
	notifications.Get("/", notificationHandler.GetNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllAsRead)
	notifications.Post("/:id/read", notificationHandler.MarkAsRead)

	// ==================== Admin ====================

	adminGroup := api.Group("/admin", authMiddleware.RequireAdmin())
	adminGroup.Get("/audit-logs", utils.MakeHTTPHandleFunc(admin_handlers.ListAuditLogs, cfg.Store))
	adminGroup.Get("/audit-logs/:id", utils.MakeHTTPHandleFunc(admin_handlers.GetAuditLog, cfg.Store))
}
