package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// BurnAddress is the sink account for burned assets. Nothing ever spends
// from it.
const BurnAddress = "burn"

var (
	ErrZeroAmount            = errors.New("ledger: zero amount")
	ErrInsufficientBalance   = errors.New("ledger: insufficient balance")
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
	ErrTransfersDisabled     = errors.New("ledger: token transfers disabled")
)

// EscrowAddress is the ledger account owned by a launch. It holds collected
// assets, the undistributed reward supply, and LP tokens.
func EscrowAddress(launchID uint) string {
	return fmt.Sprintf("launch:%d", launchID)
}

// PairAddress is the ledger account holding a pool's reserves.
func PairAddress(pairID uint) string {
	return fmt.Sprintf("pair:%d", pairID)
}

// BalanceOf returns the holder's balance, zero for unknown accounts.
func BalanceOf(db *gorm.DB, asset, holder string) (uint64, error) {
	var row models.AssetBalance
	err := db.Where("asset = ? AND holder = ?", asset, holder).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}

func credit(db *gorm.DB, asset, holder string, amount uint64) error {
	var row models.AssetBalance
	err := utils.ForUpdate(db).
		Where("asset = ? AND holder = ?", asset, holder).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.AssetBalance{Asset: asset, Holder: holder, Amount: amount}).Error
	}
	if err != nil {
		return err
	}
	row.Amount += amount
	return db.Save(&row).Error
}

func debit(db *gorm.DB, asset, holder string, amount uint64) error {
	var row models.AssetBalance
	err := utils.ForUpdate(db).
		Where("asset = ? AND holder = ?", asset, holder).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if row.Amount < amount {
		return ErrInsufficientBalance
	}
	row.Amount -= amount
	return db.Save(&row).Error
}

// Mint creates new units of an asset out of thin air. Used by reward token
// creation and the dev faucet.
func Mint(db *gorm.DB, asset, to string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	return credit(db, asset, to, amount)
}

// Burn removes units from circulation by moving them to the burn account.
func Burn(db *gorm.DB, asset, from string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := debit(db, asset, from, amount); err != nil {
		return err
	}
	if err := credit(db, asset, BurnAddress, amount); err != nil {
		return err
	}
	// Track reward token burns on the token record.
	var info models.RewardTokenInfo
	err := db.Where("asset = ?", asset).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	info.Burned += amount
	return db.Save(&info).Error
}

// Transfer moves amount between accounts. Reward tokens with disabled
// transfers may only move through their launch escrow.
func Transfer(db *gorm.DB, asset, from, to string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := checkTransferGate(db, asset, from, to); err != nil {
		return err
	}
	if err := debit(db, asset, from, amount); err != nil {
		return err
	}
	return credit(db, asset, to, amount)
}

// Approve sets an absolute allowance from owner to spender.
func Approve(db *gorm.DB, asset, owner, spender string, amount uint64) error {
	var row models.AssetAllowance
	err := utils.ForUpdate(db).
		Where("asset = ? AND owner = ? AND spender = ?", asset, owner, spender).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.AssetAllowance{Asset: asset, Owner: owner, Spender: spender, Amount: amount}).Error
	}
	if err != nil {
		return err
	}
	row.Amount = amount
	return db.Save(&row).Error
}

// Allowance returns the remaining authorization, zero when none was granted.
func Allowance(db *gorm.DB, asset, owner, spender string) (uint64, error) {
	var row models.AssetAllowance
	err := db.Where("asset = ? AND owner = ? AND spender = ?", asset, owner, spender).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}

// TransferFrom spends owner's funds under spender's allowance, moving them
// to the destination account. The allowance is consumed before the balance
// moves so a failed pull cannot leave a spent allowance.
func TransferFrom(db *gorm.DB, asset, owner, spender, to string, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := checkTransferGate(db, asset, owner, to); err != nil {
		return err
	}
	var row models.AssetAllowance
	err := utils.ForUpdate(db).
		Where("asset = ? AND owner = ? AND spender = ?", asset, owner, spender).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientAllowance
	}
	if err != nil {
		return err
	}
	if row.Amount < amount {
		return ErrInsufficientAllowance
	}
	row.Amount -= amount
	if err := db.Save(&row).Error; err != nil {
		return err
	}
	if err := debit(db, asset, owner, amount); err != nil {
		return err
	}
	return credit(db, asset, to, amount)
}

// checkTransferGate rejects movements of a transfer-gated reward token that
// do not touch its launch escrow account.
func checkTransferGate(db *gorm.DB, asset, from, to string) error {
	var info models.RewardTokenInfo
	err := db.Where("asset = ?", asset).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.TransfersEnabled {
		return nil
	}
	escrow := EscrowAddress(info.LaunchID)
	if from == escrow || to == escrow {
		return nil
	}
	return ErrTransfersDisabled
}
