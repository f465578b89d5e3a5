package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"brainix/config"
	"brainix/database"
	"brainix/routers"
	"brainix/services"
	"brainix/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	services.App = services.Init(config.AppConfig, database.Database.Db)

	if config.AppConfig.SchedulerEnabled {
		scheduler, err := utils.InitializeScheduler(config.AppConfig.PendingOrderTTL)
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	app := routers.NewApp(config.AppConfig)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal(err)
	}
}
