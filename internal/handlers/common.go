package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/ledger"
)

var (
	engine    *business.Engine
	publisher *config.Publisher
)

// Init wires the handler package. publisher may be nil when RabbitMQ is not
// configured.
func Init(e *business.Engine, p *config.Publisher) {
	engine = e
	publisher = p
}

// Engine exposes the wired engine to other internal packages (routes,
// websocket hub).
func Engine() *business.Engine {
	return engine
}

// launchEventMessage is the post-commit notification payload.
type launchEventMessage struct {
	Type     string `json:"type"`
	LaunchID uint   `json:"launch_id"`
	Address  string `json:"address,omitempty"`
	Asset    string `json:"asset,omitempty"`
	Amount   uint64 `json:"amount,omitempty"`
}

// notify publishes a committed event to the queue and the websocket hub.
// Notification failures are logged, never propagated: the state change
// already committed.
func notify(msg launchEventMessage) {
	if publisher != nil {
		if err := publisher.Publish(config.QueueLaunchEvents, msg); err != nil {
			log.Warnf("publish launch event failed: %v", err)
		}
	}
	EventHub.Broadcast(msg)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid launch id"})
		return 0, false
	}
	return uint(id), true
}

// statusFor maps engine sentinels onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, business.ErrLaunchNotFound):
		return http.StatusNotFound
	case errors.Is(err, business.ErrNameTaken),
		errors.Is(err, business.ErrSymbolTaken),
		errors.Is(err, business.ErrAlreadyLaunched),
		errors.Is(err, business.ErrLaunchCancelled),
		errors.Is(err, business.ErrFinalizing):
		return http.StatusConflict
	case errors.Is(err, business.ErrStalePrice),
		errors.Is(err, business.ErrInsufficientPriceHistory),
		errors.Is(err, business.ErrExcessivePriceDeviation),
		errors.Is(err, business.ErrReserveImbalance),
		errors.Is(err, business.ErrExcessivePriceImpact),
		errors.Is(err, business.ErrPairPreFunded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, business.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, business.ErrInvalidName),
		errors.Is(err, business.ErrInvalidSymbol),
		errors.Is(err, business.ErrZeroAmount),
		errors.Is(err, business.ErrBelowMinimum),
		errors.Is(err, business.ErrExcessiveContribution),
		errors.Is(err, business.ErrExcessiveSecondary),
		errors.Is(err, business.ErrDeadlinePassed),
		errors.Is(err, business.ErrTargetNotReached),
		errors.Is(err, business.ErrTokenApprovalRequired),
		errors.Is(err, business.ErrNoSecondaryPair),
		errors.Is(err, business.ErrLaunchStillActive),
		errors.Is(err, business.ErrLaunchSucceeded),
		errors.Is(err, business.ErrNoContributionToRefund),
		errors.Is(err, business.ErrLiquidityLocked),
		errors.Is(err, business.ErrInsufficientRewardTokens),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrTransfersDisabled),
		errors.Is(err, ledger.ErrNothingVested),
		errors.Is(err, ledger.ErrVestingNotStarted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
