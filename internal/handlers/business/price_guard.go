package business

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/exchange"
	"launchcontrol/pkg/oracle"
	"launchcontrol/pkg/utils"
)

// priceContext caches the oracle answers for one contribution call so the
// same logical validation never queries the oracle twice. It lives for the
// duration of the call only.
type priceContext struct {
	amount      uint64
	spot        uint64
	twap        uint64
	validatedAt time.Time
	validated   bool
}

// validateSecondaryValue prices amount of the secondary asset in primary
// units and rejects anything that smells like price manipulation. Layered,
// independent checks: reserve staleness, TWAP availability, spot/TWAP
// deviation band, reserve-value imbalance, and constant-product price
// impact of the contemplated amount.
func (e *Engine) validateSecondaryValue(tx *gorm.DB, pair *models.ExchangePair, amount uint64, now time.Time) (uint64, error) {
	ctx := priceContext{amount: amount}

	if now.Sub(pair.ReservesUpdatedAt) > e.Params.StalenessThreshold {
		return 0, ErrStalePrice
	}

	spot, err := e.Oracle.GetCurrentPrice(tx, pair.ID, e.Params.SecondaryAsset, amount)
	if err != nil {
		return 0, err
	}
	ctx.spot = spot

	twap, err := e.Oracle.Consult(tx, pair.ID, e.Params.SecondaryAsset, amount, e.Params.TwapWindow, now)
	if errors.Is(err, oracle.ErrInsufficientHistory) {
		return 0, ErrInsufficientPriceHistory
	}
	if err != nil {
		return 0, err
	}
	if twap == 0 {
		return 0, ErrInsufficientPriceHistory
	}
	ctx.twap = twap

	if utils.DeviationBps(spot, twap, twap) > e.Params.MaxDeviationBps {
		log.WithFields(log.Fields{"pair_id": pair.ID, "spot": spot, "twap": twap}).
			Warn("secondary contribution rejected: price deviation")
		return 0, ErrExcessivePriceDeviation
	}

	if err := e.checkReserveBalance(tx, pair, now); err != nil {
		return 0, err
	}

	secondaryReserve, primaryReserve := exchange.Reserves(pair, e.Params.SecondaryAsset)
	impact := utils.PriceImpactBps(amount, secondaryReserve, primaryReserve, e.Params.SwapFeeBps)
	if impact > e.Params.MaxPriceImpactBps {
		return 0, ErrExcessivePriceImpact
	}

	ctx.validatedAt = now
	ctx.validated = true
	return ctx.spot, nil
}

// checkReserveBalance values both sides of the pair at the TWAP and rejects
// pools where one side holds nearly all the value. A constant-product pool
// is balanced at its own spot price by construction, so the TWAP is the
// only meaningful yardstick here.
func (e *Engine) checkReserveBalance(tx *gorm.DB, pair *models.ExchangePair, now time.Time) error {
	secondaryReserve, primaryReserve := exchange.Reserves(pair, e.Params.SecondaryAsset)
	if secondaryReserve == 0 || primaryReserve == 0 {
		return ErrReserveImbalance
	}
	secondaryValue, err := e.Oracle.Consult(tx, pair.ID, e.Params.SecondaryAsset, secondaryReserve, e.Params.TwapWindow, now)
	if errors.Is(err, oracle.ErrInsufficientHistory) {
		return ErrInsufficientPriceHistory
	}
	if err != nil {
		return err
	}
	total := primaryReserve + secondaryValue
	if total == 0 {
		return ErrReserveImbalance
	}
	primaryShare := utils.MulDiv(primaryReserve, utils.BpsDenominator, total)
	if primaryShare < e.Params.MinReserveShareBps || primaryShare > e.Params.MaxReserveShareBps {
		return ErrReserveImbalance
	}
	return nil
}
