package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchcontrol/internal/models"
)

// ContributeRequest is the request body for both contribution endpoints.
type ContributeRequest struct {
	Contributor string `json:"contributor" binding:"required"`
	Amount      uint64 `json:"amount" binding:"required"`
}

// ContributePrimary accepts a primary-asset contribution. When the
// contribution completes the raise target, finalization runs immediately
// afterwards.
func ContributePrimary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reached, err := engine.ContributePrimary(id, req.Contributor, req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventContribution, LaunchID: id, Address: req.Contributor, Amount: req.Amount})

	finalized := finalizeIfReached(id, reached)
	c.JSON(http.StatusOK, gin.H{
		"target_reached": reached,
		"finalized":      finalized,
	})
}

// ContributeSecondary accepts a secondary-asset contribution. The amount
// must be pre-approved to the launch escrow; its value in primary units is
// fixed by the price guard.
func ContributeSecondary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reached, err := engine.ContributeSecondary(id, req.Contributor, req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventContribution, LaunchID: id, Address: req.Contributor, Amount: req.Amount})

	finalized := finalizeIfReached(id, reached)
	c.JSON(http.StatusOK, gin.H{
		"target_reached": reached,
		"finalized":      finalized,
	})
}

// finalizeIfReached runs finalization after the contribution that filled the
// target committed. A finalization failure leaves the launch active and
// fully funded; Finalize can be retried through its own endpoint.
func finalizeIfReached(launchID uint, reached bool) bool {
	if !reached {
		return false
	}
	if err := engine.Finalize(launchID); err != nil {
		log.WithFields(log.Fields{"launch_id": launchID, "error": err}).
			Warn("auto finalize failed, launch stays fully funded")
		return false
	}
	notify(launchEventMessage{Type: models.EventFinalized, LaunchID: launchID})
	return true
}
