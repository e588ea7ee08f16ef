// Package server exposes the registry over HTTP: vehicle registration,
// ownership transfer, plate administration, and the read-only history and
// audit projections.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/query"
	"github.com/transport-authority/vehicle-registry/pkg/registration"
	"github.com/transport-authority/vehicle-registry/pkg/transfer"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// Server bundles the registry services behind a chi router.
type Server struct {
	db           *gorm.DB
	owners       *owner.Store
	vehicles     *vehicle.Store
	plates       *plate.Store
	ledger       *ownership.Store
	registration *registration.Service
	coordinator  *transfer.Coordinator
	queries      *query.Service
	audits       *audit.Store
	logger       *slog.Logger
}

// New creates a Server.
func New(
	db *gorm.DB,
	owners *owner.Store,
	vehicles *vehicle.Store,
	plates *plate.Store,
	ledger *ownership.Store,
	reg *registration.Service,
	coordinator *transfer.Coordinator,
	queries *query.Service,
	audits *audit.Store,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		db:           db,
		owners:       owners,
		vehicles:     vehicles,
		plates:       plates,
		ledger:       ledger,
		registration: reg,
		coordinator:  coordinator,
		queries:      queries,
		audits:       audits,
		logger:       logger,
	}
}

// Router builds the full API router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/owners", func(r chi.Router) {
			r.Post("/", s.handleCreateOwner)
			r.Get("/{ownerID}", s.handleGetOwner)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", s.handleRegisterVehicle)
			r.Get("/{vehicleID}", s.handleGetVehicle)
			r.Delete("/{vehicleID}", s.handleDeleteVehicle)
		})

		r.Route("/ownership", func(r chi.Router) {
			r.Post("/transfers", s.handleTransfer)
			r.Get("/history/by-vehicle/{vehicleID}", s.handleHistoryByVehicle)
			r.Get("/history/by-chassis", s.handleHistoryByChassis)
			r.Get("/history/by-plate", s.handleHistoryByPlate)
		})

		r.Route("/plates", func(r chi.Router) {
			r.Post("/", s.handleIssuePlate)
			r.Get("/{plateID}", s.handleGetPlate)
			r.Patch("/{plateID}/status", s.handleSetPlateStatus)
			r.Get("/by-owner/{ownerID}", s.handlePlatesByOwner)
		})

		r.Get("/audit/by-vehicle/{vehicleID}", s.handleAuditByVehicle)
	})

	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
