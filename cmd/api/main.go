package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SoHOSolatube/PD-App-sub000/internal/config"
	"github.com/SoHOSolatube/PD-App-sub000/internal/handlers"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
	"github.com/SoHOSolatube/PD-App-sub000/internal/services"
	"github.com/SoHOSolatube/PD-App-sub000/internal/settings"
	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	defer logger.Sync()

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	broadcastRepo := repository.NewBroadcastRepository(db)
	contactRepo := repository.NewContactRepository(db)
	eventRepo := repository.NewEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	settingsCache := settings.NewCache(settingsRepo, config.Get().SettingsCacheTTL)

	// services
	broadcastService := services.NewBroadcastService(broadcastRepo)
	contactService := services.NewContactService(contactRepo)
	eventService := services.NewEventService(eventRepo)
	settingsService := services.NewSettingsService(settingsRepo, settingsCache)
	healthService := services.NewHealthService()

	// v1 handlers
	broadcastHandler := handlers.NewBroadcastHandler(broadcastService)
	contactHandler := handlers.NewContactHandler(contactService)
	eventHandler := handlers.NewEventHandler(eventService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterBroadcastRoutes(g, broadcastHandler)
	handlers.RegisterContactRoutes(g, contactHandler)
	handlers.RegisterEventRoutes(g, eventHandler)
	handlers.RegisterSettingsRoutes(g, settingsHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
