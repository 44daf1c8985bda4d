package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	"github.com/BruksfildServices01/booking-flow/internal/config"
	"github.com/BruksfildServices01/booking-flow/internal/draft"
	"github.com/BruksfildServices01/booking-flow/internal/flow"
	"github.com/BruksfildServices01/booking-flow/internal/handlers"
	infraRepo "github.com/BruksfildServices01/booking-flow/internal/infra/repository"
	"github.com/BruksfildServices01/booking-flow/internal/infra/session"
	"github.com/BruksfildServices01/booking-flow/internal/infra/whatsapp"
	"github.com/BruksfildServices01/booking-flow/internal/middleware"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	storage draft.Storage,
	auditDispatcher *audit.Dispatcher,
	cfg *config.Config,
	log *zap.Logger,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	catalogRepo := infraRepo.NewCatalogGormRepository(db)
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	shops := &shopDeps{
		db:           db,
		cfg:          cfg,
		catalog:      catalogRepo,
		appointments: appointmentRepo,
		verifier:     whatsapp.New(cfg.WhatsAppVerifyURL, cfg.WhatsAppVerifyToken),
		audit:        auditDispatcher,
		log:          log,
	}

	registry := flow.NewRegistry(storage, cfg.SessionCacheSize, cfg.SessionTTL)
	tokens := session.NewTokens(cfg.JWTSecret, cfg.SessionTTL)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(shops, registry, tokens, log)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)

	Mount(r, bookingHandler, catalogHandler, tokens, cfg.RateLimitPerMinute, log)
}

// Mount registers the public booking API.
func Mount(
	r *gin.Engine,
	bookingHandler *handlers.BookingHandler,
	catalogHandler *handlers.CatalogHandler,
	tokens *session.Tokens,
	rateLimitPerMinute int,
	log *zap.Logger,
) {

	limited := middleware.RateLimitMiddleware(rateLimitPerMinute, log)

	public := r.Group("/api/public/:slug")
	{
		public.GET("/categories", catalogHandler.Categories)
		public.GET("/services", catalogHandler.Services)

		// ------------------------------
		// ENTRY
		// ------------------------------
		entry := public.Group("/")
		entry.Use(limited, middleware.OptionalSessionMiddleware(tokens))
		{
			entry.POST("/bookings", bookingHandler.Enter)
			entry.POST("/clients/:id/bookings", bookingHandler.EnterForClient)
		}

		// ------------------------------
		// CURRENT BOOKING
		// ------------------------------
		current := public.Group("/bookings/current")
		current.Use(middleware.SessionMiddleware(tokens))
		{
			current.GET("", bookingHandler.Current)
			current.DELETE("", bookingHandler.Reset)

			current.PUT("/steps/:step", bookingHandler.WriteStep)

			current.POST("/date", bookingHandler.SelectDate)
			current.POST("/time", bookingHandler.SelectTime)
			current.GET("/slots", bookingHandler.Slots)
			current.GET("/working-days", bookingHandler.WorkingDays)

			current.POST("/advance", limited, bookingHandler.Advance)
			current.POST("/retreat", bookingHandler.Retreat)

			current.POST("/branch", limited, bookingHandler.CompleteBranch)
			current.DELETE("/branch", bookingHandler.CancelBranch)
		}
	}
}
