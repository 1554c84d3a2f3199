/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  staffing data for demos. Each scenario is a seed document embedded from
  scenarios/*.yaml and applied through the factory package.

AVAILABLE SCENARIOS:
  small-team:         Three people on two projects, one double-booked
  cost-change:        Mid-year rate change straddled by an assignment
  regional-holidays:  Local holidays per office, a closure, a resigned dev

HOW SCENARIOS WORK:
  1. Reset database (clear all data)
  2. Invalidate the analytics cache
  3. Apply the seed (roles, projects, resources, calendar, allocations)

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "small-team"}

ADDING NEW SCENARIOS:
  1. Drop a seed file into scenarios/
  2. Add it to the 'scenarios' slice with ID, name, description

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/seed.go: Seed document format
*/
package api

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/warp/staffing-engine/factory"
)

//go:embed scenarios/*.yaml
var scenarioFiles embed.FS

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Three people across two projects; Ada is over-allocated in late March",
	},
	{
		ID:          "cost-change",
		Name:        "Cost Change",
		Description: "Developer rate rises on July 1st while an assignment spans the change",
	},
	{
		ID:          "regional-holidays",
		Name:        "Regional Holidays",
		Description: "Milan and Rome offices with different local holidays and a summer closure",
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

func loadSeed(id string) (*factory.Seed, error) {
	b, err := scenarioFiles.ReadFile("scenarios/" + id + ".yaml")
	if err != nil {
		return nil, err
	}
	seed, err := factory.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", id, err)
	}
	return seed, nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, map[string]any{"scenario": nil})
		return
	}
	s, _ := findScenario(current)
	writeJSON(w, http.StatusOK, map[string]any{"scenario": s})
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := findScenario(req.ScenarioID); !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	seed, err := loadSeed(req.ScenarioID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read scenario", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.reset(w, r) {
		return
	}
	summary, err := seed.Apply(r.Context(), h.Engine)
	if err != nil {
		h.logger.Error("scenario load failed", "scenario", req.ScenarioID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.logger.Info("scenario loaded", "scenario", req.ScenarioID, "allocated_days", summary.AllocatedDays)

	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "scenario": req.ScenarioID, "summary": summary})
}

func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.reset(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// reset must be called with h.mu held.
func (h *Handler) reset(w http.ResponseWriter, r *http.Request) bool {
	if h.resetter == nil {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return false
	}
	if err := h.resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return false
	}
	h.Engine.Cache.Invalidate()
	h.currentScenario = ""
	return true
}
