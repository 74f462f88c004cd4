package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"foreknown/internal/collector"
	"foreknown/internal/forecaster"
	"foreknown/internal/notifier"
	"foreknown/internal/predict"
)

// Per-request simulation limits.
const (
	MaxPaths  = 10000
	MaxSteps  = 10000
	MaxPoints = 10_000_000 // paths * steps
)

type ForecastHandler struct {
	forecaster *forecaster.Forecaster
	collector  *collector.Collector
}

func NewForecastHandler(fc *forecaster.Forecaster, col *collector.Collector) *ForecastHandler {
	return &ForecastHandler{forecaster: fc, collector: col}
}

// Predict handles POST /v1/predict
func (h *ForecastHandler) Predict(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	var req PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
			Code:    fiber.StatusBadRequest,
		})
	}
	if req.Paths > MaxPaths {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Too many paths",
			Message: fmt.Sprintf("Maximum %d paths allowed per request", MaxPaths),
			Code:    fiber.StatusBadRequest,
		})
	}

	opts := predict.Options{Steps: req.Steps, StepSize: req.StepSize, Paths: req.Paths, Seed: req.Seed}
	if opts.Steps == 0 && req.Horizon != 0 {
		stepSize := opts.StepSize
		if stepSize == 0 {
			stepSize = h.forecaster.Options.StepSize
		}
		steps, err := predict.StepsForHorizon(req.Horizon, stepSize)
		if err != nil {
			return predictionError(c, err)
		}
		opts.Steps = steps
	}
	if err := checkSize(opts, h.forecaster.Options.Steps); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(*err)
	}

	fc, err := h.forecaster.RunWith(ctx, req.Observations, opts)
	if err != nil {
		return predictionError(c, err)
	}
	return c.JSON(newForecastResponse(fc))
}

// Forecast handles GET /v1/forecast/:symbol
func (h *ForecastHandler) Forecast(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	symbol := c.Params("symbol")
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Symbol is required",
			Code:  fiber.StatusBadRequest,
		})
	}

	series, err := h.collector.CollectSymbol(ctx, symbol)
	if err != nil {
		if errors.Is(err, predict.ErrInvalidInput) {
			return predictionError(c, err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   "Failed to fetch history",
			Message: err.Error(),
			Code:    fiber.StatusBadGateway,
		})
	}
	fc, err := h.forecaster.Run(ctx, series)
	if err != nil {
		return predictionError(c, err)
	}
	return c.JSON(newForecastResponse(fc))
}

// checkSize rejects requests whose resolved size exceeds the per-request limits.
func checkSize(opts predict.Options, defaultSteps int) *ErrorResponse {
	steps := opts.Steps
	if steps == 0 {
		steps = defaultSteps
	}
	paths := max(opts.Paths, 1)
	switch {
	case steps > MaxSteps:
		return &ErrorResponse{
			Error:   "Too many steps",
			Message: fmt.Sprintf("Maximum %d steps allowed per request", MaxSteps),
			Code:    fiber.StatusBadRequest,
		}
	case paths*steps > MaxPoints:
		return &ErrorResponse{
			Error:   "Simulation too large",
			Message: fmt.Sprintf("paths * steps must not exceed %d", MaxPoints),
			Code:    fiber.StatusBadRequest,
		}
	}
	return nil
}

func predictionError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, predict.ErrInvalidInput):
		code = fiber.StatusBadRequest
	case errors.Is(err, predict.ErrArithmeticOverflow):
		code = fiber.StatusUnprocessableEntity
	}
	log.WithField("status", code).Warnf("prediction request failed: %v", err)
	return c.Status(code).JSON(ErrorResponse{
		Error:   notifier.UserMessage(err),
		Message: err.Error(),
		Code:    code,
	})
}

// CustomErrorHandler handles Fiber errors
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
		Code:    code,
	})
}
