package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"foreknown/internal/collector"
	"foreknown/internal/forecaster"
)

// NewApp builds the HTTP API.
func NewApp(fc *forecaster.Forecaster, col *collector.Collector) *fiber.App {
	app := fiber.New(fiber.Config{
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "foreknown",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		BodyLimit:             4 * 1024 * 1024,
		ErrorHandler:          CustomErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: log.StandardLogger().Writer(),
	}))

	forecastHandler := NewForecastHandler(fc, col)
	healthHandler := NewHealthHandler()

	app.Get("/health", healthHandler.Health)

	v1 := app.Group("/v1")
	v1.Post("/predict", forecastHandler.Predict)
	v1.Get("/forecast/:symbol", forecastHandler.Forecast)

	return app
}
