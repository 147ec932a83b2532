package main

import (
	"encoding/json"
	"time"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/pkg/config"
	"launchcontrol/pkg/oracle"
)

// PairWatchMessage asks the worker to snapshot a pair's reserves for the
// time-weighted price history.
type PairWatchMessage struct {
	PairID uint `json:"pair_id"`
}

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	params := business.LoadParams()
	priceOracle := oracle.New(params.TwapWindow)

	msgConsumer, err := config.NewConsumer(config.QueueOraclePairWatch)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Oracle pair watch worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var watch PairWatchMessage
		if err := json.Unmarshal(msg, &watch); err != nil {
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return err
		}
		if watch.PairID == 0 {
			logrus.Warn("Pair watch message without pair_id, dropping")
			return nil
		}

		err := config.DB.Transaction(func(tx *gorm.DB) error {
			return priceOracle.Update(tx, watch.PairID, time.Now().UTC())
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{"pair_id": watch.PairID, "error": err}).
				Error("Oracle observation failed")
			return err
		}
		logrus.WithField("pair_id", watch.PairID).Info("Oracle observation recorded")
		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer stopped: ", err)
	}
}
