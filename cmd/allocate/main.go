// Command allocate runs one population-wide allocation pass and exits.
// Meant for cron or manual invocation next to the long-running API server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/tandem-backend/internal/app"
	"github.com/yungbote/tandem-backend/internal/platform/envutil"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
)

func main() {
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	application, err := app.Bootstrap(log)
	if err != nil {
		log.Fatal("Bootstrap failed", "error", err)
	}
	if application.Locker != nil {
		defer application.Locker.Close()
	}

	timeout := time.Duration(envutil.Int("ALLOCATE_TIMEOUT_MINUTES", 30)) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	expired, err := application.Matches.ExpireSweep(ctx)
	if err != nil {
		log.Warn("Expiry sweep failed; continuing with allocation", "error", err)
	} else {
		log.Info("Expiry sweep done", "expired", expired)
	}

	result, err := application.Pipeline.RunPopulation(ctx)
	if err != nil {
		log.Error("Population allocation run failed", "error", err)
		os.Exit(1)
	}

	log.Info("Population allocation run finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	if result.Failed > 0 {
		os.Exit(2)
	}
}
