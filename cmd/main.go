package main

import (
	"fmt"
	"os"

	"github.com/yungbote/tandem-backend/internal/app"
	"github.com/yungbote/tandem-backend/internal/handlers"
	"github.com/yungbote/tandem-backend/internal/platform/envutil"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/server"
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

	router := server.NewRouter(server.RouterConfig{
		MatchHandler:      handlers.NewMatchHandler(application.Matches),
		AllocationHandler: handlers.NewAllocationHandler(application.Pipeline, application.Matches),
		AllowOrigins:      application.Config.AllowOrigins,
		AllowCredentials:  application.Config.AllowCredentials,
	})

	addr := ":" + application.Config.Port
	log.Info("Starting tandem matching server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
