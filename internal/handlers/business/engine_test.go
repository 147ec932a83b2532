package business

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/ledger"
)

// testClock makes the engine's notion of time controllable.
type testClock struct {
	now time.Time
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// testParams shrinks the reference policy to hand-checkable numbers.
func testParams() Params {
	p := DefaultParams()
	p.TargetRaise = 5555
	p.MinPrimaryContribution = 10
	p.MinSecondaryContribution = 10
	p.TotalSupply = 1_000_000
	p.MinPoolLiquidity = 100
	p.VestingDuration = 1000 * time.Second
	p.LPLockDuration = time.Hour
	return p
}

func newTestEngine(t *testing.T) (*Engine, *testClock) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(config.AllModels()...))

	e, err := NewEngine(db, testParams())
	require.NoError(t, err)
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e.Now = func() time.Time { return clock.now }
	return e, clock
}

func fund(t *testing.T, e *Engine, asset, holder string, amount uint64) {
	t.Helper()
	require.NoError(t, ledger.Mint(e.DB, asset, holder, amount))
}

func balance(t *testing.T, e *Engine, asset, holder string) uint64 {
	t.Helper()
	b, err := ledger.BalanceOf(e.DB, asset, holder)
	require.NoError(t, err)
	return b
}

// seedMarket bootstraps a balanced secondary/primary pool with enough
// observation history for TWAP consults at the clock's current time.
func seedMarket(t *testing.T, e *Engine, clock *testClock) *models.ExchangePair {
	t.Helper()
	const reserve = 1_000_000
	fund(t, e, e.Params.PrimaryAsset, "seeder", reserve)
	fund(t, e, e.Params.SecondaryAsset, "seeder", reserve)

	pair, err := exchange.GetOrCreatePair(e.DB, e.Params.SecondaryAsset, e.Params.PrimaryAsset, clock.now)
	require.NoError(t, err)
	_, _, _, err = exchange.AddLiquidity(e.DB, pair.ID, "seeder", e.Params.PrimaryAsset,
		reserve, reserve, 0, 0, clock.now.Add(time.Minute), clock.now)
	require.NoError(t, err)

	for _, offset := range []time.Duration{-3500 * time.Second, -1800 * time.Second, -100 * time.Second} {
		require.NoError(t, e.Oracle.Update(e.DB, pair.ID, clock.now.Add(offset)))
	}

	fresh, err := exchange.GetPairByID(e.DB, pair.ID)
	require.NoError(t, err)
	return fresh
}

func createTestLaunch(t *testing.T, e *Engine) *models.Launch {
	t.Helper()
	l, err := e.CreateLaunch("Test Project", "TT", "", "creator")
	require.NoError(t, err)
	return l
}

func reloadLaunch(t *testing.T, e *Engine, id uint) *models.Launch {
	t.Helper()
	l, err := e.GetLaunch(id)
	require.NoError(t, err)
	return l
}
