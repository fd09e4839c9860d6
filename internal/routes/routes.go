// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"time"

	"iprofit/internal/handlers"
	"iprofit/internal/metrics"
	"iprofit/internal/middleware"
	"iprofit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Login throttling per client IP.
const (
	LoginMax    = 5
	LoginWindow = time.Minute
)

// Handlers groups every endpoint the API serves.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Transactions  *handlers.TransactionHandler
	Settings      *handlers.SettingsHandler
	Referrals     *handlers.ReferralHandler
	Plans         *handlers.PlanHandler
	Loans         *handlers.LoanHandler
	Tasks         *handlers.TaskHandler
	Notifications *handlers.NotificationHandler
	News          *handlers.NewsHandler
	Support       *handlers.SupportHandler
	Audit         *handlers.AuditHandler
	Dashboard     *handlers.DashboardHandler
	Health        *handlers.HealthHandler
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
// flags may be nil, which disables the maintenance switch.
func SetupRoutes(app *fiber.App, h Handlers, auth *middleware.AuthMiddleware, flags middleware.FlagReader) {
	app.Get("/health", h.Health.HealthCheck)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	setupAuthRoutes(api, h.Auth, auth.Handler)

	// Mounted after the auth routes so login and signup stay public.
	protected := []fiber.Handler{auth.Handler}
	if flags != nil {
		protected = append(protected, middleware.Maintenance(flags))
	}
	secured := api.Group("", protected...)

	setupUserRoutes(secured, h)
	setupTransactionRoutes(secured, h.Transactions)
	setupSettingsRoutes(secured, h.Settings)
	setupReferralRoutes(secured, h.Referrals)
	setupPlanRoutes(secured, h.Plans)
	setupLoanRoutes(secured, h.Loans)
	setupTaskRoutes(secured, h.Tasks)
	setupNotificationRoutes(secured, h.Notifications)
	setupNewsRoutes(secured, h.News)
	setupSupportRoutes(secured, h.Support)

	secured.Get("/audit", middleware.RequireAdmin, middleware.HasPermission(models.PermissionAuditRead), h.Audit.List)

	dashboard := secured.Group("/dashboard", middleware.RequireAdmin, middleware.HasPermission(models.PermissionDashboardRead))
	dashboard.Get("/metrics", h.Dashboard.Metrics)
	dashboard.Get("/charts", h.Dashboard.Charts)

	secured.Get("/admin/cache-stats", middleware.RequireAdmin, h.Health.CacheStats)
}

func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        LoginMax,
		Expiration: LoginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}

func setupAuthRoutes(api fiber.Router, h *handlers.AuthHandler, authenticate fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/login", loginLimiter(), h.AdminLogin)
	auth.Post("/signup", loginLimiter(), h.Signup)
	auth.Post("/user/login", loginLimiter(), h.UserLogin)
	auth.Post("/device-check", h.DeviceCheck)
	auth.Post("/refresh", h.RefreshToken)
	auth.Post("/logout", authenticate, h.Logout)
	auth.Get("/me", authenticate, h.Me)
}

func setupUserRoutes(router fiber.Router, h Handlers) {
	// app-user self service
	router.Post("/kyc", middleware.RequireUser, h.Users.SubmitKYC)

	users := router.Group("/users", middleware.RequireAdmin)
	users.Get("/", middleware.HasPermission(models.PermissionUsersRead), h.Users.List)
	users.Post("/bulk", middleware.HasPermission(models.PermissionUsersWrite), h.Users.Bulk)
	users.Get("/:id", middleware.HasPermission(models.PermissionUsersRead), h.Users.Get)
	users.Put("/:id", middleware.HasPermission(models.PermissionUsersWrite), h.Users.Update)
	users.Delete("/:id", middleware.HasPermission(models.PermissionUsersWrite), h.Users.Delete)
	users.Post("/:id/kyc", middleware.HasPermission(models.PermissionKYCReview), h.Users.ReviewKYC)
	users.Put("/:id/status", middleware.HasPermission(models.PermissionUsersWrite), h.Users.SetStatus)
	users.Post("/:id/balance", middleware.HasPermission(models.PermissionUsersWrite), h.Users.AdjustBalance)
	users.Get("/:id/transactions", middleware.HasPermission(models.PermissionUsersRead), h.Users.Transactions)
}

func setupTransactionRoutes(router fiber.Router, h *handlers.TransactionHandler) {
	read := []fiber.Handler{middleware.RequireAdmin, middleware.HasPermission(models.PermissionTransactionsRead)}
	approve := []fiber.Handler{middleware.RequireAdmin, middleware.HasPermission(models.PermissionTransactionsApprove)}

	tx := router.Group("/transactions")
	tx.Post("/deposits", middleware.RequireUser, h.RequestDeposit)
	tx.Post("/withdrawals", middleware.RequireUser, h.RequestWithdrawal)
	tx.Post("/deposits/approve", append(approve, h.ReviewDeposit)...)
	tx.Post("/withdrawals/approve", append(approve, h.ReviewWithdrawal)...)

	tx.Get("/", append(read, h.List)...)
	tx.Get("/deposits", append(read, h.Deposits)...)
	tx.Get("/withdrawals", append(read, h.Withdrawals)...)
	tx.Get("/:id", append(read, h.Get)...)
}

func setupSettingsRoutes(router fiber.Router, h *handlers.SettingsHandler) {
	settings := router.Group("/settings", middleware.RequireAdmin)
	settings.Get("/", h.List)
	settings.Put("/", middleware.HasPermission(models.PermissionSettingsWrite), h.Update)
	settings.Get("/:key", h.Get)
}

func setupReferralRoutes(router fiber.Router, h *handlers.ReferralHandler) {
	referrals := router.Group("/referrals", middleware.RequireAdmin)
	referrals.Get("/", middleware.HasPermission(models.PermissionReferralsRead), h.List)
	referrals.Get("/overview", middleware.HasPermission(models.PermissionReferralsRead), h.Overview)
	referrals.Get("/bonuses", middleware.HasPermission(models.PermissionReferralsRead), h.Bonuses)
	referrals.Post("/bonuses", middleware.HasPermission(models.PermissionReferralsWrite), h.Settle)
}

func setupPlanRoutes(router fiber.Router, h *handlers.PlanHandler) {
	plans := router.Group("/plans")
	plans.Get("/", h.List)
	plans.Get("/:id", h.Get)

	write := middleware.HasPermission(models.PermissionPlansWrite)
	plans.Post("/", middleware.RequireAdmin, write, h.Create)
	plans.Put("/:id", middleware.RequireAdmin, write, h.Update)
	plans.Delete("/:id", middleware.RequireAdmin, write, h.Delete)
	plans.Post("/:id/assign", middleware.RequireAdmin, write, h.Assign)
}

func setupLoanRoutes(router fiber.Router, h *handlers.LoanHandler) {
	loans := router.Group("/loans")
	loans.Post("/calculate", h.Calculate)
	loans.Post("/apply", middleware.RequireUser, h.Apply)

	read := middleware.HasPermission(models.PermissionLoansRead)
	write := middleware.HasPermission(models.PermissionLoansWrite)
	loans.Get("/", middleware.RequireAdmin, read, h.List)
	loans.Post("/sweep", middleware.RequireAdmin, write, h.Sweep)
	loans.Get("/:id", middleware.RequireAdmin, read, h.Get)
	loans.Post("/:id/review", middleware.RequireAdmin, write, h.Review)
	loans.Post("/:id/disburse", middleware.RequireAdmin, write, h.Disburse)
	loans.Post("/:id/repay", middleware.RequireAdmin, write, h.Repay)
}

func setupTaskRoutes(router fiber.Router, h *handlers.TaskHandler) {
	tasks := router.Group("/tasks")
	write := middleware.HasPermission(models.PermissionTasksWrite)

	tasks.Get("/", h.List)
	tasks.Get("/submissions", middleware.RequireAdmin, write, h.Submissions)
	tasks.Post("/submissions/:id/review", middleware.RequireAdmin, write, h.ReviewSubmission)
	tasks.Get("/:id", h.Get)
	tasks.Post("/", middleware.RequireAdmin, write, h.Create)
	tasks.Put("/:id", middleware.RequireAdmin, write, h.Update)
	tasks.Delete("/:id", middleware.RequireAdmin, write, h.Delete)
	tasks.Post("/:id/submit", middleware.RequireUser, h.Submit)
}

func setupNotificationRoutes(router fiber.Router, h *handlers.NotificationHandler) {
	notifications := router.Group("/notifications", middleware.RequireAdmin)
	notifications.Get("/", h.List)
	notifications.Post("/send", middleware.HasPermission(models.PermissionNotificationsSend), h.Send)
}

func setupNewsRoutes(router fiber.Router, h *handlers.NewsHandler) {
	news := router.Group("/news")
	write := middleware.HasPermission(models.PermissionNewsWrite)

	news.Get("/", h.List)
	news.Get("/:id", h.Get)
	news.Post("/", middleware.RequireAdmin, write, h.Create)
	news.Put("/:id", middleware.RequireAdmin, write, h.Update)
	news.Delete("/:id", middleware.RequireAdmin, write, h.Delete)
}

func setupSupportRoutes(router fiber.Router, h *handlers.SupportHandler) {
	support := router.Group("/support")
	write := middleware.HasPermission(models.PermissionSupportWrite)

	support.Get("/faqs", h.FAQs)
	support.Post("/faqs", middleware.RequireAdmin, write, h.CreateFAQ)
	support.Put("/faqs/:id", middleware.RequireAdmin, write, h.UpdateFAQ)
	support.Delete("/faqs/:id", middleware.RequireAdmin, write, h.DeleteFAQ)

	// app users
	support.Post("/tickets", middleware.RequireUser, h.OpenTicket)
	support.Get("/my-tickets", middleware.RequireUser, h.MyTickets)
	support.Post("/tickets/:id/messages", middleware.RequireUser, h.UserReply)

	support.Get("/tickets", middleware.RequireAdmin, write, h.ListTickets)
	support.Get("/tickets/:id", middleware.RequireAdmin, write, h.GetTicket)
	support.Post("/tickets/:id/reply", middleware.RequireAdmin, write, h.Reply)
	support.Put("/tickets/:id", middleware.RequireAdmin, write, h.UpdateTicket)
}
