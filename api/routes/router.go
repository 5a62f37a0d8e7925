package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetdesk/fleetdesk-backend/api/controllers"
	"github.com/fleetdesk/fleetdesk-backend/api/middleware"
	"github.com/fleetdesk/fleetdesk-backend/internal/documents"
	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/internal/sales"
	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/internal/transfer"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	inventoryService inventory.Service,
	salesService sales.Service,
	tradeInService tradeins.Service,
	documentService documents.Service,
	transferService transfer.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(inventoryService, logg))
			r.Post("/", controllers.CreateVehicle(inventoryService, logg))
			r.Route("/{vehicleID}", func(r chi.Router) {
				r.Get("/", controllers.GetVehicle(inventoryService, logg))
				r.Put("/", controllers.UpdateVehicle(inventoryService, logg))
				r.Delete("/", controllers.DeleteVehicle(inventoryService, logg))
				r.Post("/status", controllers.ChangeVehicleStatus(inventoryService, logg))
				r.Post("/sell", controllers.SellVehicle(salesService, logg))
				r.Route("/documents", func(r chi.Router) {
					r.Get("/", controllers.ListVehicleDocuments(documentService, logg))
					r.Post("/", controllers.AttachDocument(documentService, logg))
				})
			})
		})

		r.Route("/sold-vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListSoldVehicles(salesService, logg))
			r.Route("/{soldVehicleID}", func(r chi.Router) {
				r.Get("/", controllers.GetSoldVehicle(salesService, logg))
				r.Put("/", controllers.UpdateSoldVehicle(salesService, logg))
			})
		})

		r.Route("/trade-ins", func(r chi.Router) {
			r.Get("/", controllers.ListTradeIns(tradeInService, logg))
			r.Post("/", controllers.CreateTradeIn(tradeInService, logg))
			r.Route("/{tradeInID}", func(r chi.Router) {
				r.Get("/", controllers.GetTradeIn(tradeInService, logg))
				r.Put("/", controllers.UpdateTradeIn(tradeInService, logg))
				r.Delete("/", controllers.DeleteTradeIn(tradeInService, logg))
				r.Post("/pickup", controllers.SetTradeInPickup(tradeInService, logg))
			})
		})

		r.Route("/documents", func(r chi.Router) {
			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", controllers.GetDocument(documentService, logg))
				r.Delete("/", controllers.DeleteDocument(documentService, logg))
			})
		})

		r.Route("/transfer", func(r chi.Router) {
			r.Get("/export", controllers.ExportData(transferService, logg))
			r.Post("/import", controllers.ImportData(transferService, logg))
		})
	})

	return r
}
