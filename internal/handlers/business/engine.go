package business

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/oracle"
	"launchcontrol/pkg/utils"
)

// Engine runs every launch operation as one database transaction with the
// launch row locked, so each call applies fully or not at all.
type Engine struct {
	DB     *gorm.DB
	Oracle *oracle.Oracle
	Params Params

	// Now is injectable for deadline and lock tests.
	Now func() time.Time
}

func NewEngine(db *gorm.DB, params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		DB:     db,
		Oracle: oracle.New(params.TwapWindow),
		Params: params,
		Now:    time.Now,
	}, nil
}

// lockLaunch fetches the launch row under a row lock.
func (e *Engine) lockLaunch(tx *gorm.DB, launchID uint) (*models.Launch, error) {
	var l models.Launch
	err := utils.ForUpdate(tx).First(&l, launchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLaunchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// checkContributable rejects contributions against a launch that is no
// longer accepting them.
func (e *Engine) checkContributable(l *models.Launch, now time.Time) error {
	switch l.State {
	case models.LaunchStateLaunched:
		return ErrAlreadyLaunched
	case models.LaunchStateCancelled:
		return ErrLaunchCancelled
	}
	if l.IsFinalizing {
		return ErrFinalizing
	}
	if now.After(l.Deadline) {
		return ErrDeadlinePassed
	}
	return nil
}

func (e *Engine) recordEvent(tx *gorm.DB, launchID uint, eventType, address, asset string, amount uint64) error {
	return tx.Create(&models.LaunchEvent{
		EventID:  uuid.NewString(),
		LaunchID: launchID,
		Type:     eventType,
		Address:  address,
		Asset:    asset,
		Amount:   amount,
	}).Error
}
