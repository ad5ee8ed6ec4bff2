// Package cache provides utility functions for periodic maintenance.
package cache

import (
	"log"
	"time"

	"github.com/AtRiskMedia/pulsetrack-go/config"
)

// StartCleanupRoutine starts a background goroutine that runs Cleanup on a
// fixed interval. A panic inside a cleanup pass is recovered and logged so
// the next scheduled tick still runs.
func StartCleanupRoutine(agg *Aggregator) {
	go func() {
		ticker := time.NewTicker(config.CleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			runCleanup(agg)
		}
	}()
}

func runCleanup(agg *Aggregator) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Cleanup panic recovered: %v", r)
		}
	}()

	removedUsers, removedSessions := agg.Cleanup()
	if removedUsers > 0 || removedSessions > 0 {
		log.Printf("Cleanup: removed %d stale users, %d expired sessions", removedUsers, removedSessions)
	}
}
