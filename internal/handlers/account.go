package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"launchcontrol/pkg/ledger"
)

// GetBalance returns one asset balance for an address.
func GetBalance(c *gin.Context) {
	asset := c.Param("asset")
	address := c.Param("address")
	balance, err := ledger.BalanceOf(engine.DB, asset, address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset, "address": address, "balance": balance})
}

// FaucetRequest mints funding assets to an address.
type FaucetRequest struct {
	Address string `json:"address" binding:"required"`
	Asset   string `json:"asset" binding:"required"`
	Amount  uint64 `json:"amount" binding:"required"`
}

// Faucet mints primary or secondary assets for development and test
// environments. Reward tokens are never mintable here.
func Faucet(c *gin.Context) {
	var req FaucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Asset != engine.Params.PrimaryAsset && req.Asset != engine.Params.SecondaryAsset {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset not mintable"})
		return
	}
	err := engine.DB.Transaction(func(tx *gorm.DB) error {
		return ledger.Mint(tx, req.Asset, req.Address, req.Amount)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": req.Asset, "address": req.Address, "minted": req.Amount})
}

// ApproveRequest grants a spender a pull allowance on the owner's balance.
type ApproveRequest struct {
	Owner   string `json:"owner" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	Asset   string `json:"asset" binding:"required"`
	Amount  uint64 `json:"amount"`
}

// Approve sets an allowance. Contributors approve a launch escrow before
// secondary contributions and before refunds that reclaim reward tokens.
func Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := engine.DB.Transaction(func(tx *gorm.DB) error {
		return ledger.Approve(tx, req.Asset, req.Owner, req.Spender, req.Amount)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": req.Asset, "owner": req.Owner, "spender": req.Spender, "allowance": req.Amount})
}

// GetAllowance returns the remaining pull allowance for a spender.
func GetAllowance(c *gin.Context) {
	asset := c.Param("asset")
	owner := c.Query("owner")
	spender := c.Query("spender")
	if owner == "" || spender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and spender are required"})
		return
	}
	allowance, err := ledger.Allowance(engine.DB, asset, owner, spender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset, "owner": owner, "spender": spender, "allowance": allowance})
}

// GetParams returns the engine's launch parameters.
func GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, engine.Params)
}
