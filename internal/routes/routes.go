package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/JastiRaja/parnika-backend/internal/config"
	"github.com/JastiRaja/parnika-backend/internal/handlers"
	"github.com/JastiRaja/parnika-backend/internal/middleware"
	"github.com/JastiRaja/parnika-backend/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
		cfg.SMTPPassword, cfg.SMTPFrom, cfg.AdminEmail)
	inventory := services.NewInventory()

	authHandler := handlers.NewAuthHandler(db, cfg)
	resetHandler := handlers.NewPasswordResetHandler(db, mailer)
	productHandler := handlers.NewProductHandler(db)
	orderHandler := handlers.NewOrderHandler(db, inventory, mailer)
	slideHandler := handlers.NewSlideHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	uploadHandler := handlers.NewUploadHandler(cfg)

	api := app.Group("/api")

	// Auth endpoints are rate limited to slow down credential stuffing.
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/verify-otp", resetHandler.VerifyOTP)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Public catalog. /categories must come before /:id.
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/categories", productHandler.ListCategories)
	products.Get("/:id", productHandler.GetProduct)

	api.Get("/slides", slideHandler.ListSlides)

	// Authenticated routes.
	authed := api.Group("", middleware.AuthMiddleware(cfg))

	authed.Post("/products/:id/reviews", productHandler.AddReview)

	// /my-orders must be registered before /:id.
	authed.Post("/orders", orderHandler.CreateOrder)
	authed.Get("/orders/my-orders", orderHandler.MyOrders)
	authed.Get("/orders/:id", orderHandler.GetOrder)
	authed.Get("/orders/:id/invoice", orderHandler.Invoice)
	authed.Post("/orders/:id/cancel", orderHandler.CancelOrder)
	authed.Post("/orders/:id/refund", orderHandler.SubmitRefundDetails)

	authed.Get("/profile", profileHandler.GetProfile)
	authed.Put("/profile", profileHandler.UpdateProfile)
	authed.Put("/profile/password", profileHandler.ChangePassword)

	// Admin routes.
	admin := authed.Group("", middleware.RequireAdmin())

	admin.Get("/orders", orderHandler.ListAll)
	admin.Put("/orders/:id/status", orderHandler.UpdateStatus)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)

	admin.Post("/slides", slideHandler.CreateSlide)
	admin.Put("/slides/:id", slideHandler.UpdateSlide)
	admin.Delete("/slides/:id", slideHandler.DeleteSlide)

	admin.Get("/admin/stats", adminHandler.DashboardStats)
	admin.Get("/admin/orders/recent", adminHandler.RecentOrders)
	admin.Get("/admin/orders/export", adminHandler.ExportOrders)
	admin.Get("/admin/customers", adminHandler.ListCustomers)
	admin.Get("/admin/customers/:id", adminHandler.GetCustomer)
	admin.Put("/admin/customers/:id/active", adminHandler.SetCustomerActive)
	admin.Post("/admin/uploads", uploadHandler.UploadImages)
}
