package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/internal/audit"
	"github.com/agendafacil/agenda-api/internal/booking"
	"github.com/agendafacil/agenda-api/internal/config"
	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/handlers"
	infraCache "github.com/agendafacil/agenda-api/internal/infra/cache"
	infraRepo "github.com/agendafacil/agenda-api/internal/infra/repository"
	"github.com/agendafacil/agenda-api/internal/middleware"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/realtime"
	ucAppointment "github.com/agendafacil/agenda-api/internal/usecase/appointment"
)

// registerEventLog assina todos os eventos de agendamento no bus em
// processo e os registra no log. É o consumidor padrão do bus dentro
// da API; telas e integrações assinam os mesmos eventos por fora.
func registerEventLog(bus *realtime.Bus) {
	events := []string{
		"appointment_created",
		"appointment_confirmed",
		"appointment_started",
		"appointment_completed",
		"appointment_cancelled",
	}

	for _, event := range events {
		event := event
		bus.On(event, func(payload any) {
			ap, ok := payload.(*models.Appointment)
			if !ok {
				return
			}
			log.Printf("event %s: appointment=%d company=%d slot=%s %s",
				event, ap.ID, ap.CompanyID, ap.AppointmentDate, ap.AppointmentTime)
		})
	}
}

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	bus *realtime.Bus,
	listener *realtime.Listener,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	var repo domain.Repository = infraRepo.NewBookingGormRepository(db)

	var cached *infraCache.CachedRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cached = infraCache.NewCachedRepository(repo, rdb, cfg.CacheTTL)
		repo = cached
	}

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	registerEventLog(bus)

	// ======================================================
	// CORE DE RESERVA
	// ======================================================
	simultaneous := booking.NewSimultaneousLimiter(repo, cfg.BookingPolicy, cfg.Location(), nil)
	monthly := booking.NewMonthlyLimiter(repo, cfg.BookingPolicy, cfg.Location(), nil)
	validator := booking.NewValidator(simultaneous, monthly)
	conflicts := booking.NewConflictDetector(repo, cfg.BookingPolicy)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		repo,
		validator,
		conflicts,
		auditDispatcher,
		bus,
	)

	transitionUC := ucAppointment.NewTransition(
		repo,
		auditDispatcher,
		bus,
	)

	listAppointmentsUC := ucAppointment.NewListAppointments(repo)
	availabilityUC := ucAppointment.NewGetAvailability(repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	var invalidator handlers.SettingsInvalidator
	if cached != nil {
		invalidator = cached
	}
	companyHandler := handlers.NewCompanyHandler(db, invalidator)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		transitionUC,
		listAppointmentsUC,
		availabilityUC,
		listener,
	)

	bookingHandler := handlers.NewBookingHandler(validator, conflicts)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(
		db,
		repo,
		createAppointmentUC,
		availabilityUC,
		conflicts,
		validator,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA (SLUG)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.GET("/:slug/validate", publicHandler.ValidateBooking)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/company", companyHandler.GetMeCompany)
			secured.PATCH("/me/company", companyHandler.UpdateMeCompany)
			secured.PATCH("/me/company/settings", companyHandler.UpdateMeSettings)

			secured.GET("/me/clients", clientHandler.List)
			secured.GET("/me/clients/lookup", clientHandler.Lookup)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.GET("/me/appointments/availability", appointmentHandler.Availability)
			secured.GET("/me/appointments/stream", appointmentHandler.Stream)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/me/appointments/:id/start", appointmentHandler.Start)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			// ------------------------------
			// PRÉ-CHECAGENS DE RESERVA
			// ------------------------------
			secured.GET("/me/booking/validate-slot", bookingHandler.ValidateSlot)
			secured.GET("/me/booking/conflict", bookingHandler.CheckConflict)
			secured.GET("/me/booking/limits", bookingHandler.ValidateLimits)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
