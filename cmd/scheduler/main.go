package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/SoHOSolatube/PD-App-sub000/internal/audience"
	"github.com/SoHOSolatube/PD-App-sub000/internal/config"
	"github.com/SoHOSolatube/PD-App-sub000/internal/delivery"
	"github.com/SoHOSolatube/PD-App-sub000/internal/dispatcher"
	"github.com/SoHOSolatube/PD-App-sub000/internal/providers"
	"github.com/SoHOSolatube/PD-App-sub000/internal/repository"
	"github.com/SoHOSolatube/PD-App-sub000/internal/settings"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/prom"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/redis"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	defer logger.Sync()

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

	// The step guard is optional; without redis the conditional updates
	// in the store still keep duplicate work out.
	var guard *dispatcher.StepGuard
	if config.Get().RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		guard = dispatcher.NewStepGuard(redisAdap, dispatcher.DefaultStepGuardConfig())
	} else {
		logger.Warn("no redis configured, running without the step fire-guard")
	}

	broadcastRepo := repository.NewBroadcastRepository(db)
	contactRepo := repository.NewContactRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	settingsCache := settings.NewCache(settingsRepo, config.Get().SettingsCacheTTL)
	resolver := audience.NewResolver(contactRepo, registrationRepo)
	factory := providers.NewFactory(config.Get().ProviderTimeout, config.Get().TwilioBaseURL, config.Get().SendGridBaseURL)
	engine := delivery.NewEngine(factory)

	disp := dispatcher.NewDispatcher(broadcastRepo, resolver, engine, settingsCache, config.Get().DispatchInterval)
	seq := dispatcher.NewSequencer(eventRepo, resolver, engine, settingsCache, guard, config.Get().SequencerInterval)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(config.Get().MetricsAddr, "/metrics")
	}()

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		disp.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		seq.Run(ctx)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	cancel()
	wg.Wait()
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
