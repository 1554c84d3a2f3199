package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/generic"
)

func TestNextVersion_CreateStartsAtOne(t *testing.T) {
	next, err := generic.NextVersion[generic.Role](nil, generic.Role{ID: "dev"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestNextVersion_CreateWithVersionConflicts(t *testing.T) {
	_, err := generic.NextVersion[generic.Role](nil, generic.Role{ID: "dev", Version: 3})

	assert.ErrorIs(t, err, generic.ErrConcurrencyConflict)
}

func TestNextVersion_UpdateBumpsMatchingVersion(t *testing.T) {
	stored := generic.Resource{ID: "r1", Version: 4}

	next, err := generic.NextVersion(&stored, generic.Resource{ID: "r1", Version: 4})

	require.NoError(t, err)
	assert.Equal(t, int64(5), next)
}

func TestNextVersion_StaleUpdateReportsBothVersions(t *testing.T) {
	// GIVEN: Another writer already moved the project to version 3
	stored := generic.Project{ID: "p1", Version: 3}

	// WHEN: A client writes with the version it read earlier
	_, err := generic.NextVersion(&stored, generic.Project{ID: "p1", Version: 2})

	// THEN: The conflict names the entity and both versions
	var conflict *generic.ConcurrencyConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "project", conflict.Kind)
	assert.Equal(t, "p1", conflict.Key)
	assert.Equal(t, int64(2), conflict.Expected)
	assert.Equal(t, int64(3), conflict.Actual)
	assert.True(t, generic.IsRetryable(err))
	assert.True(t, generic.IsConflict(err))
}

func TestCheckVersion(t *testing.T) {
	stored := generic.Resource{ID: "r1", Version: 2}

	assert.NoError(t, generic.CheckVersion(stored, 2))
	assert.ErrorIs(t, generic.CheckVersion(stored, 1), generic.ErrConcurrencyConflict)
}

func TestTransactionFailure_MatchesCauseAndSentinel(t *testing.T) {
	cause := &generic.InvalidPercentageError{Value: 120}
	err := &generic.TransactionFailureError{Op: "bulk set", Cause: cause}

	assert.ErrorIs(t, err, generic.ErrTransactionFailed)
	assert.ErrorIs(t, err, generic.ErrInvalidPercentage)
	assert.True(t, generic.IsClientError(err))
}
