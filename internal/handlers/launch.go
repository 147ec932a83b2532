package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launchcontrol/internal/models"
)

// CreateLaunchRequest is the request body for creating a launch campaign.
type CreateLaunchRequest struct {
	Name     string `json:"name" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	ImageRef string `json:"image_ref"`
	Creator  string `json:"creator" binding:"required"`
}

// CreateLaunch registers a new campaign and mints its reward token supply
// into escrow.
func CreateLaunch(c *gin.Context) {
	var req CreateLaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := engine.CreateLaunch(req.Name, req.Symbol, req.ImageRef, req.Creator)
	if err != nil {
		abortWithError(c, err)
		return
	}
	notify(launchEventMessage{Type: models.EventLaunchCreated, LaunchID: l.ID, Address: req.Creator, Asset: l.RewardAsset})
	c.JSON(http.StatusCreated, l)
}

// ListLaunches returns a page of campaigns, newest first.
func ListLaunches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	launches, total, err := engine.ListLaunches(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      launches,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetLaunch returns one campaign by id.
func GetLaunch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	l, err := engine.GetLaunch(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GetRemainingCapacity reports the unfilled portion of the raise target and
// the remaining secondary-value headroom.
func GetRemainingCapacity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rc, err := engine.GetRemainingCapacity(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}

// GetContributor returns the per-contributor accounting entry. An address
// that never contributed gets an all-zero entry.
func GetContributor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := engine.GetContributor(id, c.Param("address"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetPools returns the bootstrapped pools of a launched campaign.
func GetPools(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pools, err := engine.GetPools(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pools)
}

// GetLaunchEvents returns the newest event rows for a campaign.
func GetLaunchEvents(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	events, err := engine.RecentEvents(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
