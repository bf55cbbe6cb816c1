package main

import (
	"database/sql"
	"expvar"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/antoniovct/api-biblioteca/config"
	"github.com/antoniovct/api-biblioteca/handler"
	"github.com/antoniovct/api-biblioteca/internal/jsonlog"
	"github.com/antoniovct/api-biblioteca/repository"
	"github.com/antoniovct/api-biblioteca/repository/postgres"
	"github.com/antoniovct/api-biblioteca/service"
	"github.com/jellydator/ttlcache/v3"
)

const version = "1.0.0"

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

// @title  Biblioteca API
// @version 1.0.0
// @description This is an API service for managing a library's catalog, loans and reservations.
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /
func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration
	cfg, err := config.Decode(config.String("CONFIG_FILE", ""))
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	if cfg.Metrics.Enabled {
		publishMetrics(db)
	}

	// Other shared resources: waitgroup and in-memory cache
	var wg sync.WaitGroup
	cache := ttlcache.New(ttlcache.WithTTL[string, int64](30 * time.Minute))
	go cache.Start()

	// Application layers
	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, cache, service)

	// Instantiate application
	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	// Background scheduler: reservation expiry sweeps and daily email notices.
	stopScheduler := make(chan struct{})
	service.StartScheduler(stopScheduler)

	// Start HTTP server
	err = app.serve(&wg, logger, stopScheduler)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// publishMetrics exposes runtime stats on the /debug/vars endpoint.
func publishMetrics(db *sql.DB) {
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() interface{} {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))
}
