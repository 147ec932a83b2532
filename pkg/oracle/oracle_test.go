package oracle

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"launchcontrol/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.ExchangePair{}, &models.OracleObservation{}))
	return db
}

func createPair(t *testing.T, db *gorm.DB, reserve0, reserve1 uint64, at time.Time) *models.ExchangePair {
	t.Helper()
	pair := models.ExchangePair{
		Asset0: "AAA", Asset1: "BBB",
		Reserve0: reserve0, Reserve1: reserve1,
		ReservesUpdatedAt: at,
	}
	require.NoError(t, db.Create(&pair).Error)
	return &pair
}

func TestGetCurrentPrice(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pair := createPair(t, db, 1_000_000, 2_000_000, now)
	o := New(time.Hour)

	// 100 AAA at a 1:2 ratio is 200 BBB.
	value, err := o.GetCurrentPrice(db, pair.ID, "AAA", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), value)

	// And the other direction.
	value, err = o.GetCurrentPrice(db, pair.ID, "BBB", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), value)

	_, err = o.GetCurrentPrice(db, 999, "AAA", 100)
	assert.Error(t, err)
}

func TestUpdateRejectsEmptyReserves(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pair := createPair(t, db, 0, 0, now)
	o := New(time.Hour)

	err := o.Update(db, pair.ID, now)
	assert.ErrorIs(t, err, ErrEmptyReserves)
}

func TestConsult(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pair := createPair(t, db, 1_000_000, 1_000_000, now)
	o := New(time.Hour)

	t.Run("too few observations", func(t *testing.T) {
		require.NoError(t, o.Update(db, pair.ID, now.Add(-30*time.Minute)))
		_, err := o.Consult(db, pair.ID, "AAA", 100, time.Hour, now)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	})

	t.Run("observations must span half the window", func(t *testing.T) {
		require.NoError(t, o.Update(db, pair.ID, now.Add(-29*time.Minute)))
		require.NoError(t, o.Update(db, pair.ID, now.Add(-28*time.Minute)))
		_, err := o.Consult(db, pair.ID, "AAA", 100, time.Hour, now)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	})

	t.Run("steady reserves average to spot", func(t *testing.T) {
		require.NoError(t, o.Update(db, pair.ID, now.Add(-58*time.Minute)))
		value, err := o.Consult(db, pair.ID, "AAA", 100, time.Hour, now)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), value)
	})

	t.Run("a last-second reserve push barely moves the average", func(t *testing.T) {
		// Quadruple one reserve just before the consult.
		require.NoError(t, db.Model(pair).Update("reserve1", uint64(4_000_000)).Error)
		require.NoError(t, o.Update(db, pair.ID, now.Add(-time.Second)))

		value, err := o.Consult(db, pair.ID, "AAA", 100, time.Hour, now)
		require.NoError(t, err)
		// Spot says 400; the time-weighted average stays near 100.
		assert.Less(t, value, uint64(110))
	})
}
