// Package exchange implements the constant-product venue the launch engine
// bootstraps liquidity into. Pairs live in the database so that pool
// creation and funding commit or roll back together with the rest of a
// finalization call.
package exchange

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// MinimumLiquidity is permanently locked to the burn account on first mint,
// so a pool can never be fully drained back to zero LP supply.
const MinimumLiquidity = 1000

var (
	ErrPairNotFound         = errors.New("exchange: pair not found")
	ErrDeadlineExpired      = errors.New("exchange: deadline expired")
	ErrSlippageExceeded     = errors.New("exchange: slippage exceeded")
	ErrInsufficientDeposit  = errors.New("exchange: deposit below minimum liquidity")
	ErrIdenticalAssets      = errors.New("exchange: identical assets")
	ErrInsufficientReserves = errors.New("exchange: insufficient reserves")
)

// SortAssets orders a pair's assets canonically.
func SortAssets(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// LPAssetID derives the ledger asset id of a pair's liquidity token.
func LPAssetID(pairID uint) string {
	return ledger.PairAddress(pairID) + ":lp"
}

// GetPair fetches a pair by its asset pair, in either order.
func GetPair(db *gorm.DB, a, b string) (*models.ExchangePair, error) {
	if a == b {
		return nil, ErrIdenticalAssets
	}
	a0, a1 := SortAssets(a, b)
	var pair models.ExchangePair
	err := db.Where("asset0 = ? AND asset1 = ?", a0, a1).First(&pair).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPairNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// GetPairByID fetches and locks a pair row.
func GetPairByID(db *gorm.DB, pairID uint) (*models.ExchangePair, error) {
	var pair models.ExchangePair
	err := utils.ForUpdate(db).First(&pair, pairID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPairNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// GetOrCreatePair returns the existing pair for (a, b) or registers an empty
// one.
func GetOrCreatePair(db *gorm.DB, a, b string, now time.Time) (*models.ExchangePair, error) {
	pair, err := GetPair(db, a, b)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, ErrPairNotFound) {
		return nil, err
	}
	a0, a1 := SortAssets(a, b)
	created := models.ExchangePair{Asset0: a0, Asset1: a1, ReservesUpdatedAt: now}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Reserves returns a pair's reserves oriented so that the first value
// belongs to the requested asset.
func Reserves(pair *models.ExchangePair, asset string) (own, other uint64) {
	if asset == pair.Asset0 {
		return pair.Reserve0, pair.Reserve1
	}
	return pair.Reserve1, pair.Reserve0
}

// AddLiquidity deposits up to (desiredA of assetA, desiredB of assetB) from
// the provider into the pair, observing minA/minB slippage floors and an
// execution deadline. Returns the amounts actually used and the LP tokens
// minted to the provider.
func AddLiquidity(db *gorm.DB, pairID uint, provider, assetA string, desiredA, desiredB, minA, minB uint64, deadline, now time.Time) (usedA, usedB, liquidity uint64, err error) {
	if now.After(deadline) {
		return 0, 0, 0, ErrDeadlineExpired
	}
	pair, err := GetPairByID(db, pairID)
	if err != nil {
		return 0, 0, 0, err
	}
	reserveA, reserveB := Reserves(pair, assetA)
	assetB := pair.Asset0
	if assetA == pair.Asset0 {
		assetB = pair.Asset1
	}

	if pair.LPSupply == 0 {
		usedA, usedB = desiredA, desiredB
		liquidity = utils.SqrtProduct(usedA, usedB)
		if liquidity <= MinimumLiquidity {
			return 0, 0, 0, ErrInsufficientDeposit
		}
		liquidity -= MinimumLiquidity
		if err := ledger.Mint(db, LPAssetID(pair.ID), ledger.BurnAddress, MinimumLiquidity); err != nil {
			return 0, 0, 0, err
		}
	} else {
		optimalB := utils.Quote(desiredA, reserveA, reserveB)
		if optimalB <= desiredB {
			if optimalB < minB {
				return 0, 0, 0, ErrSlippageExceeded
			}
			usedA, usedB = desiredA, optimalB
		} else {
			optimalA := utils.Quote(desiredB, reserveB, reserveA)
			if optimalA > desiredA || optimalA < minA {
				return 0, 0, 0, ErrSlippageExceeded
			}
			usedA, usedB = optimalA, desiredB
		}
		la := utils.MulDiv(usedA, pair.LPSupply, reserveA)
		lb := utils.MulDiv(usedB, pair.LPSupply, reserveB)
		liquidity = la
		if lb < la {
			liquidity = lb
		}
		if liquidity == 0 {
			return 0, 0, 0, ErrInsufficientDeposit
		}
	}

	pairAccount := ledger.PairAddress(pair.ID)
	if err := ledger.Transfer(db, assetA, provider, pairAccount, usedA); err != nil {
		return 0, 0, 0, err
	}
	if err := ledger.Transfer(db, assetB, provider, pairAccount, usedB); err != nil {
		return 0, 0, 0, err
	}
	if err := ledger.Mint(db, LPAssetID(pair.ID), provider, liquidity); err != nil {
		return 0, 0, 0, err
	}

	if assetA == pair.Asset0 {
		pair.Reserve0 += usedA
		pair.Reserve1 += usedB
	} else {
		pair.Reserve0 += usedB
		pair.Reserve1 += usedA
	}
	pair.LPSupply += liquidity + minimumLiquidityOnFirstMint(reserveA, reserveB)
	pair.ReservesUpdatedAt = now
	if err := db.Save(pair).Error; err != nil {
		return 0, 0, 0, err
	}
	return usedA, usedB, liquidity, nil
}

func minimumLiquidityOnFirstMint(reserveA, reserveB uint64) uint64 {
	if reserveA == 0 && reserveB == 0 {
		return MinimumLiquidity
	}
	return 0
}

// TouchReserves refreshes the reserve timestamp without changing balances.
// Keepers call this when external price updates confirm the pool is live.
func TouchReserves(db *gorm.DB, pairID uint, now time.Time) error {
	pair, err := GetPairByID(db, pairID)
	if err != nil {
		return err
	}
	pair.ReservesUpdatedAt = now
	return db.Save(pair).Error
}
