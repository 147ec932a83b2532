package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/internal/models"
)

func TestGetRemainingCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	l := createTestLaunch(t, e)

	t.Run("fresh launch", func(t *testing.T) {
		rc, err := e.GetRemainingCapacity(l.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(5555), rc.Total)
		// Secondary headroom is the 50% cap.
		assert.Equal(t, uint64(2777), rc.SecondaryValue)
	})

	t.Run("after a primary contribution", func(t *testing.T) {
		fund(t, e, e.Params.PrimaryAsset, "alice", 5_000)
		_, err := e.ContributePrimary(l.ID, "alice", 4000)
		require.NoError(t, err)

		rc, err := e.GetRemainingCapacity(l.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1555), rc.Total)
		// Secondary headroom never exceeds the total gap.
		assert.Equal(t, uint64(1555), rc.SecondaryValue)
	})

	t.Run("cancelled launch has no capacity", func(t *testing.T) {
		require.NoError(t, e.Cancel(l.ID, "creator"))
		rc, err := e.GetRemainingCapacity(l.ID)
		require.NoError(t, err)
		assert.Zero(t, rc.Total)
		assert.Zero(t, rc.SecondaryValue)
	})

	t.Run("unknown launch", func(t *testing.T) {
		_, err := e.GetRemainingCapacity(9999)
		assert.ErrorIs(t, err, ErrLaunchNotFound)
	})
}

func TestListLaunchesAndEvents(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.CreateLaunch("First Project", "ONE", "", "creator")
	require.NoError(t, err)
	second, err := e.CreateLaunch("Second Project", "TWO", "", "creator")
	require.NoError(t, err)

	launches, total, err := e.ListLaunches(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, launches, 2)
	// Newest first.
	assert.Equal(t, second.ID, launches[0].ID)

	events, err := e.RecentEvents(second.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventLaunchCreated, events[0].Type)
}

func TestGetContributorNeverContributed(t *testing.T) {
	e, _ := newTestEngine(t)
	l := createTestLaunch(t, e)

	row, err := e.GetContributor(l.ID, "ghost")
	require.NoError(t, err)
	assert.Zero(t, row.PrimaryContributed)
	assert.Zero(t, row.RewardReceived)
}
