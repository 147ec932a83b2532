package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/config"
)

func main() {
	launchID := flag.Uint("launch-id", 0, "launch id to export")
	eventType := flag.String("event-type", "", "optional event type filter")
	fileName := flag.String("file-name", "", "output file name")
	flag.Parse()

	if *launchID == 0 {
		log.Fatal("a valid launch id is required")
	}
	if *fileName == "" {
		log.Fatal("an output file name is required")
	}

	config.InitDB()

	query := config.DB.Where("launch_id = ?", *launchID).Order("id asc")
	if *eventType != "" {
		query = query.Where("type = ?", *eventType)
	}
	var events []models.LaunchEvent
	if err := query.Find(&events).Error; err != nil {
		log.Fatalf("query events failed: %v", err)
	}
	if len(events) == 0 {
		log.Fatalf("no events found for launch %d", *launchID)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		log.Fatalf("marshal events failed: %v", err)
	}

	outPath := filepath.Clean(*fileName)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("write %s failed: %v", outPath, err)
	}
	fmt.Printf("exported %d events for launch %d to %s\n", len(events), *launchID, outPath)
}
