package business

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
)

func TestContributePrimary(t *testing.T) {
	e, _ := newTestEngine(t)
	l := createTestLaunch(t, e)
	escrow := ledger.EscrowAddress(l.ID)
	fund(t, e, e.Params.PrimaryAsset, "alice", 10_000)

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := e.ContributePrimary(l.ID, "alice", 0)
		assert.ErrorIs(t, err, ErrZeroAmount)
	})

	t.Run("below minimum rejected", func(t *testing.T) {
		_, err := e.ContributePrimary(l.ID, "alice", 5)
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("overshoot rejected, not clamped", func(t *testing.T) {
		_, err := e.ContributePrimary(l.ID, "alice", 6000)
		assert.ErrorIs(t, err, ErrExcessiveContribution)
		assert.Equal(t, uint64(10_000), balance(t, e, e.Params.PrimaryAsset, "alice"))
	})

	t.Run("accepted contribution moves funds and rewards", func(t *testing.T) {
		reached, err := e.ContributePrimary(l.ID, "alice", 4444)
		require.NoError(t, err)
		assert.False(t, reached)

		// 4444 of a 5555 target earns 4444/5555 of the contributor pool.
		assert.Equal(t, uint64(560_000), balance(t, e, l.RewardAsset, "alice"))
		assert.Equal(t, uint64(4444), balance(t, e, e.Params.PrimaryAsset, escrow))
		assert.Equal(t, uint64(10_000-4444), balance(t, e, e.Params.PrimaryAsset, "alice"))

		fresh := reloadLaunch(t, e, l.ID)
		assert.Equal(t, uint64(4444), fresh.PrimaryCollected)
		assert.Equal(t, uint64(560_000), fresh.RewardDistributed)

		row, err := e.GetContributor(l.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(4444), row.PrimaryContributed)
		assert.Equal(t, uint64(560_000), row.RewardReceived)
	})

	t.Run("insufficient balance rolls everything back", func(t *testing.T) {
		fund(t, e, e.Params.PrimaryAsset, "poor", 10)
		_, err := e.ContributePrimary(l.ID, "poor", 1000)
		assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

		fresh := reloadLaunch(t, e, l.ID)
		assert.Equal(t, uint64(4444), fresh.PrimaryCollected)
	})

	t.Run("exact completion bypasses the minimum", func(t *testing.T) {
		reached, err := e.ContributePrimary(l.ID, "alice", 1106)
		require.NoError(t, err)
		assert.False(t, reached)

		// Gap is now 5, below the minimum of 10. Only the exact amount goes
		// through.
		_, err = e.ContributePrimary(l.ID, "alice", 4)
		assert.ErrorIs(t, err, ErrBelowMinimum)

		reached, err = e.ContributePrimary(l.ID, "alice", 5)
		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("full launch accepts nothing more", func(t *testing.T) {
		_, err := e.ContributePrimary(l.ID, "alice", 10)
		assert.ErrorIs(t, err, ErrExcessiveContribution)
	})

	t.Run("unknown launch", func(t *testing.T) {
		_, err := e.ContributePrimary(9999, "alice", 100)
		assert.ErrorIs(t, err, ErrLaunchNotFound)
	})
}

func TestContributePrimaryAfterDeadline(t *testing.T) {
	e, clock := newTestEngine(t)
	l := createTestLaunch(t, e)
	fund(t, e, e.Params.PrimaryAsset, "alice", 1000)

	clock.advance(e.Params.CampaignDuration + time.Minute)
	_, err := e.ContributePrimary(l.ID, "alice", 100)
	assert.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestContributeSecondary(t *testing.T) {
	e, clock := newTestEngine(t)
	l := createTestLaunch(t, e)
	escrow := ledger.EscrowAddress(l.ID)
	seedMarket(t, e, clock)
	fund(t, e, e.Params.SecondaryAsset, "bob", 10_000)

	t.Run("approval required", func(t *testing.T) {
		_, err := e.ContributeSecondary(l.ID, "bob", 500)
		assert.ErrorIs(t, err, ErrTokenApprovalRequired)
	})

	require.NoError(t, ledger.Approve(e.DB, e.Params.SecondaryAsset, "bob", escrow, 10_000))

	t.Run("accepted contribution valued at spot", func(t *testing.T) {
		reached, err := e.ContributeSecondary(l.ID, "bob", 500)
		require.NoError(t, err)
		assert.False(t, reached)

		// Balanced 1:1 pool: 500 secondary is worth 500 primary.
		fresh := reloadLaunch(t, e, l.ID)
		assert.Equal(t, uint64(500), fresh.SecondaryCollected)
		assert.Equal(t, uint64(500), fresh.SecondaryValueCollected)
		assert.Equal(t, uint64(500), balance(t, e, e.Params.SecondaryAsset, escrow))

		// Allowance was consumed.
		remaining, err := ledger.Allowance(e.DB, e.Params.SecondaryAsset, "bob", escrow)
		require.NoError(t, err)
		assert.Equal(t, uint64(9_500), remaining)
	})

	t.Run("secondary cap enforced", func(t *testing.T) {
		// Cap is 50% of 5555 = 2777 in value; 500 already used.
		_, err := e.ContributeSecondary(l.ID, "bob", 2400)
		assert.ErrorIs(t, err, ErrExcessiveSecondary)
	})

	t.Run("price impact guard", func(t *testing.T) {
		fund(t, e, e.Params.SecondaryAsset, "whale", 100_000)
		require.NoError(t, ledger.Approve(e.DB, e.Params.SecondaryAsset, "whale", escrow, 100_000))
		_, err := e.ContributeSecondary(l.ID, "whale", 50_000)
		assert.ErrorIs(t, err, ErrExcessivePriceImpact)
	})
}

func TestContributeSecondaryWithoutPair(t *testing.T) {
	e, _ := newTestEngine(t)
	l := createTestLaunch(t, e)
	fund(t, e, e.Params.SecondaryAsset, "bob", 1000)

	_, err := e.ContributeSecondary(l.ID, "bob", 500)
	assert.ErrorIs(t, err, ErrNoSecondaryPair)
}

func TestSecondaryPriceGuards(t *testing.T) {
	t.Run("stale reserves", func(t *testing.T) {
		e, clock := newTestEngine(t)
		l := createTestLaunch(t, e)
		seedMarket(t, e, clock)
		fund(t, e, e.Params.SecondaryAsset, "bob", 1000)
		require.NoError(t, ledger.Approve(e.DB, e.Params.SecondaryAsset, "bob", ledger.EscrowAddress(l.ID), 1000))

		clock.advance(3 * time.Hour)
		_, err := e.ContributeSecondary(l.ID, "bob", 500)
		assert.ErrorIs(t, err, ErrStalePrice)
	})

	t.Run("insufficient history", func(t *testing.T) {
		e, clock := newTestEngine(t)
		l := createTestLaunch(t, e)
		pair := seedMarket(t, e, clock)
		fund(t, e, e.Params.SecondaryAsset, "bob", 1000)
		require.NoError(t, ledger.Approve(e.DB, e.Params.SecondaryAsset, "bob", ledger.EscrowAddress(l.ID), 1000))

		// Drop the seeded history.
		require.NoError(t, e.DB.Exec("DELETE FROM oracle_observation WHERE pair_id = ?", pair.ID).Error)
		_, err := e.ContributeSecondary(l.ID, "bob", 500)
		assert.ErrorIs(t, err, ErrInsufficientPriceHistory)
	})

	t.Run("spot deviates from twap", func(t *testing.T) {
		e, clock := newTestEngine(t)
		l := createTestLaunch(t, e)
		pair := seedMarket(t, e, clock)
		fund(t, e, e.Params.SecondaryAsset, "bob", 1000)
		require.NoError(t, ledger.Approve(e.DB, e.Params.SecondaryAsset, "bob", ledger.EscrowAddress(l.ID), 1000))

		// Push the spot price 20% above the recorded history.
		require.NoError(t, e.DB.Model(pair).Updates(map[string]interface{}{
			"reserve0":            uint64(1_200_000),
			"reserves_updated_at": clock.now,
		}).Error)

		_, err := e.ContributeSecondary(l.ID, "bob", 500)
		assert.ErrorIs(t, err, ErrExcessivePriceDeviation)
	})

	t.Run("drained reserve side", func(t *testing.T) {
		e, clock := newTestEngine(t)
		pair := seedMarket(t, e, clock)

		// Drain the primary side while the recorded history still values
		// the pool as balanced: nearly all the TWAP value now sits on the
		// secondary side.
		require.NoError(t, e.DB.Model(pair).Updates(map[string]interface{}{
			"reserve0":            uint64(1_000),
			"reserves_updated_at": clock.now,
		}).Error)
		skewed, err := exchange.GetPairByID(e.DB, pair.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, e.checkReserveBalance(e.DB, skewed, clock.now), ErrReserveImbalance)

		// And the mirror image: the secondary side drained instead.
		require.NoError(t, e.DB.Model(pair).Updates(map[string]interface{}{
			"reserve0": uint64(1_000_000),
			"reserve1": uint64(1_000),
		}).Error)
		skewed, err = exchange.GetPairByID(e.DB, pair.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, e.checkReserveBalance(e.DB, skewed, clock.now), ErrReserveImbalance)
	})
}
