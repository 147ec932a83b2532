// Package oracle prices one asset of a pair in terms of the other. Spot
// prices come straight from current reserves; time-weighted averages come
// from reserve snapshots recorded by Update, so a single-block reserve push
// cannot move the average.
package oracle

import (
	"errors"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/utils"
)

var (
	ErrInsufficientHistory = errors.New("oracle: insufficient price history")
	ErrEmptyReserves       = errors.New("oracle: empty reserves")
)

// Oracle consults a pair's recorded observations.
type Oracle struct {
	// Window is the default TWAP lookback.
	Window time.Duration
	// MinObservations is the fewest snapshots a TWAP may be built from.
	MinObservations int
}

func New(window time.Duration) *Oracle {
	return &Oracle{Window: window, MinObservations: 3}
}

// GetCurrentPrice converts amount of asset into the pair's other asset at
// the current reserve ratio.
func (o *Oracle) GetCurrentPrice(db *gorm.DB, pairID uint, asset string, amount uint64) (uint64, error) {
	pair, err := exchange.GetPairByID(db, pairID)
	if err != nil {
		return 0, err
	}
	return quoteAt(pair.Asset0, pair.Reserve0, pair.Reserve1, asset, amount)
}

// LastUpdateTime is the pair's last reserve mutation.
func (o *Oracle) LastUpdateTime(db *gorm.DB, pairID uint) (time.Time, error) {
	pair, err := exchange.GetPairByID(db, pairID)
	if err != nil {
		return time.Time{}, err
	}
	return pair.ReservesUpdatedAt, nil
}

// Update snapshots the pair's current reserves as one observation.
func (o *Oracle) Update(db *gorm.DB, pairID uint, now time.Time) error {
	pair, err := exchange.GetPairByID(db, pairID)
	if err != nil {
		return err
	}
	if pair.Reserve0 == 0 || pair.Reserve1 == 0 {
		return ErrEmptyReserves
	}
	obs := models.OracleObservation{
		PairID:     pairID,
		Reserve0:   pair.Reserve0,
		Reserve1:   pair.Reserve1,
		ObservedAt: now,
	}
	if err := db.Create(&obs).Error; err != nil {
		return err
	}
	log.WithFields(log.Fields{"pair_id": pairID, "reserve0": pair.Reserve0, "reserve1": pair.Reserve1}).
		Debug("oracle observation recorded")
	return nil
}

// Consult returns the time-weighted average conversion of amount over the
// window ending at now. Fails with ErrInsufficientHistory when too few
// observations exist or they span less than half the window.
func (o *Oracle) Consult(db *gorm.DB, pairID uint, asset string, amount uint64, window time.Duration, now time.Time) (uint64, error) {
	if window <= 0 {
		window = o.Window
	}
	pair, err := exchange.GetPairByID(db, pairID)
	if err != nil {
		return 0, err
	}

	var observations []models.OracleObservation
	cutoff := now.Add(-window)
	if err := db.Where("pair_id = ? AND observed_at >= ? AND observed_at <= ?", pairID, cutoff, now).
		Order("observed_at asc").Find(&observations).Error; err != nil {
		return 0, err
	}
	if len(observations) < o.MinObservations {
		return 0, ErrInsufficientHistory
	}
	span := observations[len(observations)-1].ObservedAt.Sub(observations[0].ObservedAt)
	if span < window/2 {
		return 0, ErrInsufficientHistory
	}

	// Weight each observation's quote by the time until the next one; the
	// last observation carries until now.
	sum := new(big.Int)
	totalWeight := new(big.Int)
	for i, obs := range observations {
		value, err := quoteAt(pair.Asset0, obs.Reserve0, obs.Reserve1, asset, amount)
		if err != nil {
			return 0, err
		}
		var weight int64
		if i+1 < len(observations) {
			weight = int64(observations[i+1].ObservedAt.Sub(obs.ObservedAt) / time.Second)
		} else {
			weight = int64(now.Sub(obs.ObservedAt) / time.Second)
		}
		if weight <= 0 {
			weight = 1
		}
		w := big.NewInt(weight)
		sum.Add(sum, new(big.Int).Mul(new(big.Int).SetUint64(value), w))
		totalWeight.Add(totalWeight, w)
	}
	if totalWeight.Sign() == 0 {
		return 0, ErrInsufficientHistory
	}
	return new(big.Int).Quo(sum, totalWeight).Uint64(), nil
}

func quoteAt(asset0 string, reserve0, reserve1 uint64, asset string, amount uint64) (uint64, error) {
	if reserve0 == 0 || reserve1 == 0 {
		return 0, ErrEmptyReserves
	}
	if asset == asset0 {
		return utils.Quote(amount, reserve0, reserve1), nil
	}
	return utils.Quote(amount, reserve1, reserve0), nil
}
