package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/ledger"
)

func TestCreateLaunch(t *testing.T) {
	e, _ := newTestEngine(t)

	t.Run("happy path", func(t *testing.T) {
		l, err := e.CreateLaunch("My Project", "MYP", "ipfs://img", "creator")
		require.NoError(t, err)
		assert.Equal(t, models.LaunchStateActive, l.State)
		assert.Equal(t, "RWD-1-MYP", l.RewardAsset)

		// 70/20/10 split of the total supply.
		assert.Equal(t, uint64(700_000), l.TokensForContributors)
		assert.Equal(t, uint64(200_000), l.TokensForLiquidity)
		assert.Equal(t, uint64(100_000), l.TokensForCreator)

		// Full supply sits in escrow.
		escrow := ledger.EscrowAddress(l.ID)
		assert.Equal(t, uint64(1_000_000), balance(t, e, l.RewardAsset, escrow))

		// Deadline is one campaign duration out.
		assert.Equal(t, e.Now().Add(e.Params.CampaignDuration), l.Deadline)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := e.CreateLaunch("My Project", "OTH", "", "creator2")
		assert.ErrorIs(t, err, ErrNameTaken)
	})

	t.Run("duplicate symbol rejected", func(t *testing.T) {
		_, err := e.CreateLaunch("Other Project", "MYP", "", "creator2")
		assert.ErrorIs(t, err, ErrSymbolTaken)
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		_, err := e.CreateLaunch("bad/name!", "OK", "", "creator")
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = e.CreateLaunch("", "OK", "", "creator")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("invalid symbol rejected", func(t *testing.T) {
		_, err := e.CreateLaunch("Fine Name", "toolongsym", "", "creator")
		assert.ErrorIs(t, err, ErrInvalidSymbol)

		_, err = e.CreateLaunch("Fine Name", "a b", "", "creator")
		assert.ErrorIs(t, err, ErrInvalidSymbol)
	})

	t.Run("rejected creation leaves no name reservation", func(t *testing.T) {
		_, err := e.CreateLaunch("Rollback Name", "bad sym", "", "creator")
		require.ErrorIs(t, err, ErrInvalidSymbol)

		_, err = e.CreateLaunch("Rollback Name", "RBK", "", "creator")
		assert.NoError(t, err)
	})
}

func TestRewardTransferGate(t *testing.T) {
	e, _ := newTestEngine(t)
	l := createTestLaunch(t, e)
	escrow := ledger.EscrowAddress(l.ID)

	// Escrow can distribute.
	require.NoError(t, ledger.Transfer(e.DB, l.RewardAsset, escrow, "alice", 100))

	// Holder-to-holder movement is gated until finalization.
	err := ledger.Transfer(e.DB, l.RewardAsset, "alice", "bob", 10)
	assert.ErrorIs(t, err, ledger.ErrTransfersDisabled)

	// Moving back into escrow is always allowed (refund path).
	assert.NoError(t, ledger.Transfer(e.DB, l.RewardAsset, "alice", escrow, 10))
}
