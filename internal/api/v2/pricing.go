package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/salamtime/rentalops/internal/datastore/entities"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/logger"
	"github.com/salamtime/rentalops/internal/pricing"
)

// initPricingRoutes registers the rate card and override endpoints.
func (c *Controller) initPricingRoutes() {
	prices := c.Group.Group("/pricing")

	prices.GET("/rates", c.ListRates)
	prices.PUT("/rates", c.UpsertRate)
	prices.POST("/quote", c.QuoteRental)
	prices.POST("/overrides/:id/approve", c.ApproveOverride)
	prices.POST("/overrides/:id/reject", c.RejectOverride)
}

// ListRates returns the published rate card.
func (c *Controller) ListRates(ctx echo.Context) error {
	entries, err := c.pricing.RateCard(ctx.Request().Context())
	if err != nil {
		c.log.Error("failed to list rates", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list rates"})
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"rates": entries,
		"count": len(entries),
	})
}

// UpsertRate creates or replaces the rate card row for a vehicle class.
func (c *Controller) UpsertRate(ctx echo.Context) error {
	var entry entities.PriceEntry
	if err := ctx.Bind(&entry); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := c.pricing.UpsertRate(ctx.Request().Context(), &entry); err != nil {
		c.log.Error("failed to upsert rate", logger.Error(err))
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, entry)
}

// QuoteRental prices a rental request.
func (c *Controller) QuoteRental(ctx echo.Context) error {
	var body struct {
		VehicleClass string  `json:"vehicle_class"`
		Days         int     `json:"days"`
		TransportKm  float64 `json:"transport_km"`
	}
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	quote, err := c.pricing.Quote(ctx.Request().Context(), body.VehicleClass, body.Days, body.TransportKm)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownClass) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Unknown vehicle class"})
		}
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, quote)
}

// ApproveOverride approves a pending price override request.
func (c *Controller) ApproveOverride(ctx echo.Context) error {
	return c.resolveOverride(ctx, true)
}

// RejectOverride rejects a pending price override request.
func (c *Controller) RejectOverride(ctx echo.Context) error {
	return c.resolveOverride(ctx, false)
}

func (c *Controller) resolveOverride(ctx echo.Context, approve bool) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid override ID"})
	}

	if err := c.pricing.ResolveOverride(ctx.Request().Context(), id, approve); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Override not found"})
		}
		c.log.Error("failed to resolve override", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve override"})
	}

	status := "rejected"
	if approve {
		status = "approved"
	}
	return ctx.JSON(http.StatusOK, map[string]any{"id": id, "status": status})
}

// parseUintParam parses a uint route parameter.
func parseUintParam(ctx echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
