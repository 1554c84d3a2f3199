/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the planning frontend

ROUTE GROUPS:
  /api/roles/*          Roles, effective rates and cost changes
  /api/resources/*      Resources, skills, load and utilization
  /api/projects/*       Projects and FTE
  /api/assignments/*    Assignments and the allocation ledger
  /api/matches          Best-fit ranking
  /api/reports/*        Over-allocation report
  /api/calendar/*       Holidays and closures
  /api/scenarios/*      Demo scenarios
  /metrics              Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tunes the router. The zero value allows no cross-origin
// callers and serves no /metrics.
type RouterOptions struct {
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.Post("/", h.CreateRole)
			r.Get("/{id}", h.GetRole)
			r.Get("/{id}/rate", h.GetRate)
			r.Post("/{id}/cost", h.ChangeRoleCost)
		})

		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.CreateResource)
			r.Get("/{id}", h.GetResource)
			r.Put("/{id}", h.UpdateResource)
			r.Delete("/{id}", h.DeleteResource)
			r.Put("/{id}/skills", h.SetSkills)
			r.Get("/{id}/assignments", h.ListResourceAssignments)
			r.Get("/{id}/load", h.GetLoad)
			r.Get("/{id}/status", h.GetStatus)
			r.Get("/{id}/utilization", h.GetUtilization)
			r.Get("/{id}/capacity", h.GetCapacity)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Get("/{id}/fte", h.GetFTE)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
			r.Get("/{id}/allocations", h.ListAllocations)
			r.Delete("/{id}/allocations", h.ClearAllocations)
			r.Post("/{id}/allocations/bulk", h.BulkSetAllocations)
			r.Put("/{id}/allocations/{date}", h.SetAllocation)
			r.Get("/{id}/cost", h.GetCost)
		})

		r.Post("/matches", h.RankCandidates)
		r.Get("/reports/over-allocation", h.OverAllocationReport)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", h.ListCalendar)
			r.Post("/", h.CreateCalendarEvent)
			r.Delete("/{id}", h.DeleteCalendarEvent)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
