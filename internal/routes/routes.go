package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloodlink-server/internal/config"
	"bloodlink-server/internal/handlers"
	"bloodlink-server/internal/matching"
	"bloodlink-server/internal/middleware"
	"bloodlink-server/internal/models"
	"bloodlink-server/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Core services
	scheduler := scheduling.NewService(db, cfg.Donation)
	matcher := matching.NewService(db, cfg.Donation)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	donorHandler := handlers.NewDonorHandler(db, scheduler.Eligibility)
	bloodBankHandler := handlers.NewBloodBankHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, scheduler)
	inventoryHandler := handlers.NewInventoryHandler(db, matcher)
	requestHandler := handlers.NewBloodRequestHandler(db, matcher)
	donationHandler := handlers.NewDonationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
		}

		// Donor profile and eligibility routes
		donorRoutes := private.Group("/donors")
		{
			donorRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RoleDonor), donorHandler.GetMyProfile)
			donorRoutes.GET("/me/eligibility", middleware.RoleAuthMiddleware(models.RoleDonor), donorHandler.CheckEligibility)
			donorRoutes.GET("/me/donations", middleware.RoleAuthMiddleware(models.RoleDonor), donorHandler.GetDonationHistory)

			adminDonorRoutes := donorRoutes.Group("")
			adminDonorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminDonorRoutes.GET("", donorHandler.ListDonors)
				adminDonorRoutes.POST("/:id/deferral", donorHandler.SetDeferral)
				adminDonorRoutes.DELETE("/:id/deferral", donorHandler.ClearDeferral)
				adminDonorRoutes.GET("/:id/donations", donationHandler.GetDonationsForDonor)
			}
		}

		// Blood bank routes
		bankRoutes := private.Group("/blood-banks")
		{
			bankRoutes.GET("", bloodBankHandler.ListBloodBanks)
			bankRoutes.GET("/:id", bloodBankHandler.GetBloodBankByID)
			bankRoutes.GET("/:id/availability", appointmentHandler.GetAvailability)
			bankRoutes.GET("/:id/inventory", inventoryHandler.GetInventoryForBank)

			adminBankRoutes := bankRoutes.Group("")
			adminBankRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminBankRoutes.POST("", bloodBankHandler.CreateBloodBank)
				adminBankRoutes.PUT("/:id", bloodBankHandler.UpdateBloodBank)
				adminBankRoutes.DELETE("/:id", bloodBankHandler.DeactivateBloodBank)
				adminBankRoutes.PUT("/:id/inventory", inventoryHandler.UpsertInventory)
				adminBankRoutes.POST("/:id/inventory/reserve", inventoryHandler.ReserveInventory)
				adminBankRoutes.POST("/:id/inventory/release", inventoryHandler.ReleaseInventory)
			}
		}

		// Inventory overview (admin)
		private.GET("/inventory/low-stock", middleware.RoleAuthMiddleware(models.RoleAdmin), inventoryHandler.GetLowStock)

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDonor, models.RoleAdmin), appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.CompleteAppointment)
		}

		// Blood request routes
		requestRoutes := private.Group("/requests")
		{
			requestRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleFacility), requestHandler.CreateRequest)
			requestRoutes.GET("", requestHandler.GetRequestsForUser)
			requestRoutes.GET("/:id/matches", requestHandler.GetMatchesForRequest)
			requestRoutes.PATCH("/:id/fulfill", middleware.RoleAuthMiddleware(models.RoleAdmin), requestHandler.FulfillRequest)
			requestRoutes.PATCH("/:id/cancel", requestHandler.CancelRequest)
		}

		// Donation recording (admin/operator)
		donationRoutes := private.Group("/donations")
		donationRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			donationRoutes.POST("", donationHandler.RecordDonation)
			donationRoutes.PATCH("/:id/notes", donationHandler.UpdateDonationNotes)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
