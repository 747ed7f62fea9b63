package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/config"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/database"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/server"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/services"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/validator"
)

// @title           Rozpočet API
// @version         1.0
// @description     Budget planning over a two-period ledger: category tree, classification, rollups, pivots and month-over-month variance.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Shared key required on mutating routes when API_KEY is set.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.Env)
	defer logger.Sync()
	log := logger.Get()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()
	router := server.NewRouter(services.NewServices(dbManager.DB()), appConfig.APIKey)

	if appConfig.APIKey == "" {
		log.Warn("API_KEY is not set, mutating routes are open")
	}
	log.Infof("Starting Rozpočet server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
