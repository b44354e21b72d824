package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/essu-water/maintenance-api/internal/config"
	"github.com/essu-water/maintenance-api/internal/database"
	"github.com/essu-water/maintenance-api/internal/handler"
	"github.com/essu-water/maintenance-api/internal/queue"
	"github.com/essu-water/maintenance-api/internal/repository"
	"github.com/essu-water/maintenance-api/internal/router"
	"github.com/essu-water/maintenance-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	blobs, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	reports := repository.NewReportRepo(db)

	// Redis is optional: without it the public list is uncached and
	// submissions are not rate limited, but the API stays up.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	// Echo's default error handler answers {"message": ...}; every other
	// response in this API uses the {"error": ...} shape.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		if !c.Response().Committed {
			_ = c.JSON(code, echo.Map{"error": msg})
		}
	}
	router.Register(e, router.Deps{
		Cfg:     cfg,
		Auth:    handler.NewAuthHandler(cfg, users),
		Reports: handler.NewReportHandler(cfg, reports, blobs),
		Users:   handler.NewUserHandler(users),
		Redis:   rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
