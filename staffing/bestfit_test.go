package staffing_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/generic"
	"github.com/warp/staffing-engine/staffing"
)

func weekOfMarch4(role string, commitment int) staffing.MatchRequest {
	return staffing.MatchRequest{
		RoleID:               generic.RoleID(role),
		Start:                date("2024-03-04"),
		End:                  date("2024-03-08"),
		CommitmentPercentage: generic.Percentage(commitment),
	}
}

func ids(matches []staffing.Match) []generic.ResourceID {
	out := make([]generic.ResourceID, len(matches))
	for i, m := range matches {
		out[i] = m.ResourceID
	}
	return out
}

func TestRank_PrefersAvailability(t *testing.T) {
	// GIVEN: r1 busy at 80% all week, r2 free
	f := newFixture(t)
	a := f.assign(t, "r1", "p1")
	_, err := f.engine.Allocations.BulkSetRange(f.ctx, a, date("2024-03-04"), date("2024-03-08"), 80)
	require.NoError(t, err)

	// WHEN
	matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))

	// THEN: r2 ranks first and only r2 can absorb 50%
	require.NoError(t, err)
	require.Equal(t, []generic.ResourceID{"r2", "r1"}, ids(matches))

	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.True(t, matches[0].CanAbsorb)

	assert.InDelta(t, 80.0, matches[1].AverageLoad, 1e-9)
	assert.InDelta(t, 0.2, matches[1].Availability, 1e-9)
	assert.InDelta(t, 0.6*0.2+0.25+0.15, matches[1].Score, 1e-9)
	assert.False(t, matches[1].CanAbsorb)
}

func TestRank_TieBreaksOnResourceID(t *testing.T) {
	f := newFixture(t)

	matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))

	require.NoError(t, err)
	assert.Equal(t, []generic.ResourceID{"r1", "r2"}, ids(matches))
	assert.Equal(t, matches[0].Score, matches[1].Score)
}

func TestRank_TieBreaksOnLowerLoad(t *testing.T) {
	// GIVEN: Only skills count, so load does not change the score
	f := newFixture(t, func(cfg *staffing.Config) {
		cfg.Weights = staffing.Weights{SkillMatch: 1}
	})
	a1 := f.assign(t, "r1", "p1")
	a2 := f.assign(t, "r2", "p1")
	_, err := f.engine.Allocations.BulkSetRange(f.ctx, a1, date("2024-03-04"), date("2024-03-08"), 40)
	require.NoError(t, err)
	_, err = f.engine.Allocations.BulkSetRange(f.ctx, a2, date("2024-03-04"), date("2024-03-08"), 20)
	require.NoError(t, err)

	// WHEN
	matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))

	// THEN: Equal scores, the less loaded person first
	require.NoError(t, err)
	require.Equal(t, []generic.ResourceID{"r2", "r1"}, ids(matches))
	assert.Equal(t, matches[0].Score, matches[1].Score)
}

func TestRank_SkillMatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Directory.SetSkills(f.ctx, "r1", []generic.SkillID{"go", "sql"}))
	require.NoError(t, f.engine.Directory.SetSkills(f.ctx, "r2", []generic.SkillID{"go", "go"}))

	req := weekOfMarch4("dev", 50)
	req.DesiredSkills = []generic.SkillID{"go", "sql", "go"}
	matches, err := f.engine.Matcher.Rank(f.ctx, req)

	require.NoError(t, err)
	require.Equal(t, []generic.ResourceID{"r1", "r2"}, ids(matches))
	assert.InDelta(t, 1.0, matches[0].SkillMatch, 1e-9)
	assert.InDelta(t, 0.5, matches[1].SkillMatch, 1e-9)
}

func TestRank_ExcludesResigned(t *testing.T) {
	f := newFixture(t)
	r2, err := f.engine.Store.GetResource(f.ctx, "r2")
	require.NoError(t, err)
	r2.Resigned = true
	_, err = f.engine.Directory.SaveResource(f.ctx, r2)
	require.NoError(t, err)

	matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))

	require.NoError(t, err)
	assert.Equal(t, []generic.ResourceID{"r1"}, ids(matches))
}

func TestRank_EquivalentSeniority(t *testing.T) {
	setup := func(t *testing.T, allow bool) *fixture {
		f := newFixture(t, func(cfg *staffing.Config) { cfg.AllowEquivalentSeniority = allow })
		f.role(t, "qa", 450, 2)
		f.role(t, "lead", 900, 4)
		f.resource(t, "r3", "qa", "milan")
		f.resource(t, "r4", "lead", "milan")
		return f
	}

	t.Run("strict role", func(t *testing.T) {
		f := setup(t, false)
		matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))
		require.NoError(t, err)
		assert.Equal(t, []generic.ResourceID{"r1", "r2"}, ids(matches))
	})

	t.Run("same level allowed", func(t *testing.T) {
		f := setup(t, true)
		matches, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 50))
		require.NoError(t, err)
		assert.Equal(t, []generic.ResourceID{"r1", "r2", "r3"}, ids(matches))
	})
}

func TestRank_SeniorityOverride(t *testing.T) {
	f := newFixture(t)
	level := 4

	req := weekOfMarch4("dev", 50)
	req.Seniority = &level
	matches, err := f.engine.Matcher.Rank(f.ctx, req)

	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.InDelta(t, 1.0/3.0, matches[0].SeniorityFit, 1e-9)
}

func TestRank_InvalidRequests(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Matcher.Rank(f.ctx, weekOfMarch4("dev", 101))
	assert.True(t, errors.Is(err, generic.ErrInvalidPercentage))

	_, err = f.engine.Matcher.Rank(f.ctx, weekOfMarch4("ghost", 50))
	assert.True(t, errors.Is(err, generic.ErrRoleNotFound))

	req := weekOfMarch4("dev", 50)
	req.Start, req.End = req.End, req.Start
	_, err = f.engine.Matcher.Rank(f.ctx, req)
	assert.True(t, errors.Is(err, generic.ErrInvalidRange))
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, staffing.DefaultWeights().Validate())
	assert.Error(t, staffing.Weights{Availability: -1, SkillMatch: 1}.Validate())
	assert.Error(t, staffing.Weights{}.Validate())
}
