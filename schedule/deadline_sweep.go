package main

import (
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/oracle"
)

var (
	params      business.Params
	priceOracle *oracle.Oracle
	publisher   *dbconfig.Publisher
)

// SweepExpiredLaunches marks the refund window open for active launches that
// missed their deadline without reaching the target. The event is recorded
// once per launch.
func SweepExpiredLaunches() error {
	now := time.Now().UTC()

	var launches []models.Launch
	err := dbconfig.DB.
		Where("state = ? AND deadline < ?", models.LaunchStateActive, now).
		Find(&launches).Error
	if err != nil {
		logger.Errorf("> query expired launches failed: %v", err)
		return err
	}

	for _, l := range launches {
		if l.PrimaryCollected+l.SecondaryValueCollected >= params.TargetRaise {
			// Fully funded but never finalized; finalization retries own this.
			continue
		}

		var existing models.LaunchEvent
		err := dbconfig.DB.
			Where("launch_id = ? AND type = ?", l.ID, models.EventRefundWindowOpen).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Errorf("> query refund window event for launch %d failed: %v", l.ID, err)
			continue
		}

		event := models.LaunchEvent{
			EventID:  uuid.NewString(),
			LaunchID: l.ID,
			Type:     models.EventRefundWindowOpen,
		}
		if err := dbconfig.DB.Create(&event).Error; err != nil {
			logger.Errorf("> record refund window event for launch %d failed: %v", l.ID, err)
			continue
		}
		if publisher != nil {
			if err := publisher.Publish(dbconfig.QueueLaunchEvents, event); err != nil {
				logger.Warnf("> publish refund window event for launch %d failed: %v", l.ID, err)
			}
		}
		logger.Infof("> refund window opened for launch %d", l.ID)
	}
	return nil
}

// RefreshOracleObservations snapshots every pair's reserves into the
// time-weighted price history.
func RefreshOracleObservations() error {
	now := time.Now().UTC()

	var pairs []models.ExchangePair
	if err := dbconfig.DB.Find(&pairs).Error; err != nil {
		logger.Errorf("> query pairs failed: %v", err)
		return err
	}
	for _, pair := range pairs {
		if pair.Reserve0 == 0 || pair.Reserve1 == 0 {
			continue
		}
		err := dbconfig.DB.Transaction(func(tx *gorm.DB) error {
			return priceOracle.Update(tx, pair.ID, now)
		})
		if err != nil {
			logger.Errorf("> oracle observation for pair %d failed: %v", pair.ID, err)
		}
	}
	return nil
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/deadline_sweep.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("cannot open log file, logging to stdout")
	}
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)

	dbconfig.InitDB()
	logger.Info("> database connection initialized")

	params = business.LoadParams()
	priceOracle = oracle.New(params.TwapWindow)

	if os.Getenv("RABBITMQ_HOST") != "" {
		dbconfig.InitRabbitMQ()
		publisher, err = dbconfig.NewPublisher()
		if err != nil {
			logger.Fatalf("> create publisher failed: %v", err)
		}
	}

	c := cron.New(cron.WithSeconds())

	// Every minute: open refund windows for expired launches.
	_, err = c.AddFunc("0 * * * * *", func() {
		if err := SweepExpiredLaunches(); err != nil {
			logger.Errorf("> deadline sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> add deadline sweep task failed: %v", err)
	}

	// Every 5 minutes: refresh oracle observations.
	_, err = c.AddFunc("0 */5 * * * *", func() {
		if err := RefreshOracleObservations(); err != nil {
			logger.Errorf("> oracle refresh failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> add oracle refresh task failed: %v", err)
	}

	logger.Info("> scheduled tasks started")
	c.Start()

	select {}
}
