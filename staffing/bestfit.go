/*
bestfit.go - Advisory ranking of people for an open staffing need

PURPOSE:
  Given a role, a period and a commitment, rank the people who could take
  the work. Ranking only reads; nothing is booked.

SCORE:
  score = wA * availability + wS * skillMatch + wP * seniorityFit

  availability  max(0, 100 - averageLoad) / 100 over the period's working days
  skillMatch    desired skills held / desired skills (1 when none desired)
  seniorityFit  1 / (1 + |candidate level - requested level|)

  Default weights are 0.6 / 0.25 / 0.15.

CANDIDATES:
  Active (not resigned) resources on the requested role. With
  AllowEquivalentSeniority, also resources whose role sits at the
  requested seniority level.

ORDER:
  Score descending, then average load ascending, then resource id.
*/
package staffing

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/warp/staffing-engine/generic"
)

// Weights balances the three score terms.
type Weights struct {
	Availability float64
	SkillMatch   float64
	Seniority    float64
}

func DefaultWeights() Weights {
	return Weights{Availability: 0.6, SkillMatch: 0.25, Seniority: 0.15}
}

func (w Weights) Validate() error {
	if w.Availability < 0 || w.SkillMatch < 0 || w.Seniority < 0 {
		return fmt.Errorf("matcher weights must not be negative: %+v", w)
	}
	if w.Availability+w.SkillMatch+w.Seniority == 0 {
		return fmt.Errorf("matcher weights must not all be zero")
	}
	return nil
}

type MatchRequest struct {
	RoleID               generic.RoleID
	Start                generic.Date
	End                  generic.Date
	CommitmentPercentage generic.Percentage
	DesiredSkills        []generic.SkillID
	Seniority            *int // defaults to the requested role's level
}

type Match struct {
	ResourceID   generic.ResourceID
	Name         string
	RoleID       generic.RoleID
	Score        float64
	AverageLoad  float64
	Availability float64
	SkillMatch   float64
	SeniorityFit float64
	// CanAbsorb is true when averageLoad + commitment stays within the
	// resource's ceiling.
	CanAbsorb bool
}

type BestFitMatcher struct {
	store                    generic.Store
	capacity                 *CapacityAggregator
	weights                  Weights
	allowEquivalentSeniority bool
	metrics                  *engineMetrics
	logger                   *slog.Logger
}

func NewBestFitMatcher(store generic.Store, capacity *CapacityAggregator, weights Weights, allowEquivalentSeniority bool, metrics *engineMetrics, logger *slog.Logger) *BestFitMatcher {
	if metrics == nil {
		metrics = newEngineMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BestFitMatcher{
		store:                    store,
		capacity:                 capacity,
		weights:                  weights,
		allowEquivalentSeniority: allowEquivalentSeniority,
		metrics:                  metrics,
		logger:                   logger.With("component", "bestfit"),
	}
}

// Rank scores every eligible resource for req.
func (m *BestFitMatcher) Rank(ctx context.Context, req MatchRequest) ([]Match, error) {
	if err := generic.NewDateRange(req.Start, req.End).Validate(); err != nil {
		return nil, err
	}
	if !req.CommitmentPercentage.Valid() {
		return nil, &generic.InvalidPercentageError{Value: int(req.CommitmentPercentage)}
	}
	requestedRole, err := m.store.GetRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	level := requestedRole.SeniorityLevel
	if req.Seniority != nil {
		level = *req.Seniority
	}

	roles, err := m.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	levels := make(map[generic.RoleID]int, len(roles))
	for _, r := range roles {
		levels[r.ID] = r.SeniorityLevel
	}

	resources, err := m.store.ListResources(ctx)
	if err != nil {
		return nil, err
	}

	desired := dedupeSkills(req.DesiredSkills)
	var matches []Match
	for _, res := range resources {
		if res.Resigned {
			continue
		}
		candidateLevel := levels[res.RoleID]
		if res.RoleID != req.RoleID && !(m.allowEquivalentSeniority && candidateLevel == level) {
			continue
		}

		avgLoad, _, err := m.capacity.AverageLoad(ctx, res.ID, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		skills, err := m.store.SkillsOf(ctx, res.ID)
		if err != nil {
			return nil, err
		}

		match := Match{
			ResourceID:   res.ID,
			Name:         res.Name,
			RoleID:       res.RoleID,
			AverageLoad:  avgLoad,
			Availability: availability(avgLoad),
			SkillMatch:   skillMatch(desired, skills),
			SeniorityFit: seniorityFit(candidateLevel, level),
			CanAbsorb:    avgLoad+float64(req.CommitmentPercentage) <= float64(res.MaxStaffing()),
		}
		match.Score = m.weights.Availability*match.Availability +
			m.weights.SkillMatch*match.SkillMatch +
			m.weights.Seniority*match.SeniorityFit
		matches = append(matches, match)
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AverageLoad, b.AverageLoad); c != 0 {
			return c
		}
		return cmp.Compare(a.ResourceID, b.ResourceID)
	})

	m.metrics.rankings.Inc()
	m.metrics.rankedCandidates.Observe(float64(len(matches)))
	m.logger.Debug("ranked candidates", "role", req.RoleID, "candidates", len(matches))
	return matches, nil
}

func availability(avgLoad float64) float64 {
	return max(0, 100-avgLoad) / 100
}

func skillMatch(desired map[generic.SkillID]struct{}, held []generic.SkillID) float64 {
	if len(desired) == 0 {
		return 1
	}
	hit := 0
	seen := make(map[generic.SkillID]struct{}, len(held))
	for _, s := range held {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := desired[s]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(desired))
}

func seniorityFit(candidate, requested int) float64 {
	diff := candidate - requested
	if diff < 0 {
		diff = -diff
	}
	return 1 / (1 + float64(diff))
}

func dedupeSkills(skills []generic.SkillID) map[generic.SkillID]struct{} {
	set := make(map[generic.SkillID]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}
