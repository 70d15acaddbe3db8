package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	html "github.com/gofiber/template/html/v2"

	"cocolabs/internal/ai"
	"cocolabs/internal/cache"
	"cocolabs/internal/cart"
	"cocolabs/internal/config"
	"cocolabs/internal/http/handlers"
	applog "cocolabs/internal/log"
	"cocolabs/internal/repos"
)

func main() {
	cfg := config.Load()
	log := applog.Logger()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.WithError(err).Warnf("could not open log file %s", cfg.LogFile)
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("db.open")
	}
	defer db.Close()

	// Carts live in Redis when configured, otherwise next to everything else in SQLite.
	var storage cart.Storage = repos.NewCartStateRepo(db)
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		cancel()
		if err != nil {
			log.WithError(err).Warn("redis unavailable, carts stored in sqlite")
		} else {
			defer client.Close()
			storage = cache.NewRedisStorage(client, 0)
			log.WithField("addr", cfg.RedisAddr).Info("cart.storage.redis")
		}
	}

	model, err := ai.New(ai.Config{BaseURL: cfg.AIBaseURL, APIKey: cfg.AIAPIKey, Model: cfg.AIModel})
	if err != nil {
		log.WithError(err).Fatal("ai.init")
	}
	if !model.Enabled() {
		log.Warn("AI_API_KEY not set; recommendations use the fallback list and chat is unavailable")
	}

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	deps := handlers.NewDeps(db, cfg, storage, model)
	app := handlers.NewApp(deps, engine)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("server.shutdown")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.WithField("port", cfg.Port).Info("server.start")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server.listen")
	}
}
