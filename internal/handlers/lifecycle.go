package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchcontrol/internal/models"
)

// CallerRequest carries the acting address for lifecycle endpoints.
type CallerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// Finalize bootstraps the pools for a fully funded campaign. Normally runs
// automatically with the completing contribution; this endpoint retries a
// failed finalization.
func Finalize(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := engine.Finalize(id); err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventFinalized, LaunchID: id})
	c.JSON(http.StatusOK, gin.H{"finalized": true})
}

// Cancel aborts an active campaign. Creator only, before the deadline.
func Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := engine.Cancel(id, req.Caller); err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventCancelled, LaunchID: id, Address: req.Caller})
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// RefundRequest identifies the contributor claiming a refund.
type RefundRequest struct {
	Contributor string `json:"contributor" binding:"required"`
}

// Refund returns a contributor's assets after cancellation or a missed
// deadline. Requires a standing reward-token approval to the escrow when
// reward tokens were received.
func Refund(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := engine.Refund(id, req.Contributor); err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventRefunded, LaunchID: id, Address: req.Contributor})
	c.JSON(http.StatusOK, gin.H{"refunded": true})
}

// WithdrawLiquidity hands the creator the locked LP tokens and the retained
// primary treasury once the lock expires.
func WithdrawLiquidity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := engine.WithdrawLockedLiquidity(id, req.Caller); err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventLiquidityWithdraw, LaunchID: id, Address: req.Caller})
	c.JSON(http.StatusOK, gin.H{"withdrawn": true})
}

// ClaimVested releases the creator's vested reward tokens.
func ClaimVested(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claimed, err := engine.ClaimVested(id, req.Caller)
	if err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventVestedClaimed, LaunchID: id, Address: req.Caller, Amount: claimed})
	c.JSON(http.StatusOK, gin.H{"claimed": claimed})
}
