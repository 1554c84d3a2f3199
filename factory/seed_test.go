package factory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/factory"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/generic/store"
	"github.com/warp/staffing-engine/staffing"
)

const teamSeed = `
roles:
  - id: dev
    name: Developer
    daily_cost: "550"
    seniority: 2
    cost_history:
      - {start: 2024-01-01, end: 2024-06-30, daily_cost: "500"}
      - {start: 2024-07-01, daily_cost: "550"}
resources:
  - {id: ada, name: Ada, role: dev, location: milan, skills: [go, sql]}
  - {id: bob, name: Bob, role: dev, location: rome}
projects:
  - {id: apollo, name: Apollo}
calendar:
  - {date: 2024-03-06, type: LOCAL_HOLIDAY, location: milan, name: Patron}
assignments:
  - resource: ada
    project: apollo
    allocations:
      - {start: 2024-03-01, end: 2024-03-07, percentage: 60}
`

func newEngine(t *testing.T) *staffing.Engine {
	t.Helper()
	cfg := staffing.DefaultConfig()
	cfg.Registerer = prometheus.NewRegistry()
	e, err := staffing.New(store.NewTxMemory(), cfg)
	require.NoError(t, err)
	return e
}

func TestParse_TeamSeed(t *testing.T) {
	seed, err := factory.Parse(strings.NewReader(teamSeed))

	require.NoError(t, err)
	require.Len(t, seed.Roles, 1)
	assert.True(t, decimal.NewFromInt(550).Equal(seed.Roles[0].DailyCost))
	require.Len(t, seed.Roles[0].CostHistory, 2)
	require.NotNil(t, seed.Roles[0].CostHistory[0].End)
	assert.Equal(t, "2024-06-30", seed.Roles[0].CostHistory[0].End.String())
	assert.Nil(t, seed.Roles[0].CostHistory[1].End)
	assert.Equal(t, []string{"go", "sql"}, seed.Resources[0].Skills)
	assert.Equal(t, "2024-03-06", seed.Calendar[0].Date.String())
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := factory.Parse(strings.NewReader("roles:\n  - id: dev\n    hourly_cost: 10\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly_cost")
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := factory.Parse(strings.NewReader(""))

	assert.Error(t, err)
}

func TestSeed_Validate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"bad percentage", `
assignments:
  - resource: ada
    project: apollo
    allocations: [{start: 2024-03-01, end: 2024-03-07, percentage: 120}]
`, generic.ErrInvalidPercentage},
		{"inverted range", `
assignments:
  - resource: ada
    project: apollo
    allocations: [{start: 2024-03-07, end: 2024-03-01, percentage: 50}]
`, generic.ErrInvalidRange},
		{"duplicate assignment", `
assignments:
  - {resource: ada, project: apollo}
  - {resource: ada, project: apollo}
`, generic.ErrDuplicateAssignment},
		{"overlapping history", `
roles:
  - id: dev
    daily_cost: "500"
    cost_history:
      - {start: 2024-01-01, end: 2024-08-01, daily_cost: "500"}
      - {start: 2024-07-01, daily_cost: "550"}
`, generic.ErrInvalidCostHistory},
		{"local holiday without location", `
calendar:
  - {date: 2024-03-06, type: LOCAL_HOLIDAY}
`, generic.ErrInvalidCalendarEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSeed_Validate_ReportsEveryProblem(t *testing.T) {
	_, err := factory.Parse(strings.NewReader(`
roles:
  - {id: dev, daily_cost: "-1"}
  - {id: dev, daily_cost: "1"}
projects:
  - {name: nameless}
`))

	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "negative")
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "projects[0]: id is required")
}

func TestSeed_Apply(t *testing.T) {
	// GIVEN: The team seed and an empty engine
	seed, err := factory.Parse(strings.NewReader(teamSeed))
	require.NoError(t, err)
	e := newEngine(t)
	ctx := context.Background()

	// WHEN
	sum, err := seed.Apply(ctx, e)

	// THEN: Everything is created; the Milan holiday and the weekend are skipped
	require.NoError(t, err)
	assert.Equal(t, factory.Summary{
		Roles: 1, Resources: 2, Projects: 1, CalendarEvents: 1, Assignments: 1, AllocatedDays: 4,
	}, sum)

	rate, err := e.Rates.RateFor(ctx, "dev", generic.MustParseDate("2024-03-04"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(rate))

	skills, err := e.Store.SkillsOf(ctx, "ada")
	require.NoError(t, err)
	assert.ElementsMatch(t, []generic.SkillID{"go", "sql"}, skills)

	load, err := e.Capacity.DailyLoad(ctx, "ada", generic.MustParseDate("2024-03-07"))
	require.NoError(t, err)
	assert.Equal(t, 60, load)
}

func TestSeed_ApplyTwiceConflicts(t *testing.T) {
	seed, err := factory.Parse(strings.NewReader(teamSeed))
	require.NoError(t, err)
	e := newEngine(t)
	ctx := context.Background()
	_, err = seed.Apply(ctx, e)
	require.NoError(t, err)

	_, err = seed.Apply(ctx, e)

	assert.True(t, errors.Is(err, generic.ErrConcurrencyConflict))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(teamSeed), 0o600))

	seed, err := factory.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, seed.Resources, 2)

	_, err = factory.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
