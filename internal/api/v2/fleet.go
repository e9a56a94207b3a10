package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/logger"
)

// initFleetRoutes registers the fleet maintenance actions.
func (c *Controller) initFleetRoutes() {
	fleet := c.Group.Group("/fleet")

	fleet.GET("/faults", c.ListFaults)
	fleet.POST("/:id/clear-fault", c.ClearFault)
}

// ListFaults returns vehicles currently carrying an open fault.
func (c *Controller) ListFaults(ctx echo.Context) error {
	if c.fleetRepo == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Fleet module is disabled"})
	}

	vehicles, err := c.fleetRepo.ListVehiclesWithFaults(ctx.Request().Context())
	if err != nil {
		c.log.Error("failed to list vehicle faults", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list vehicle faults"})
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// ClearFault closes the open fault on a vehicle. The vehicle's alert
// disappears on the next aggregation pass.
func (c *Controller) ClearFault(ctx echo.Context) error {
	if c.fleetRepo == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Fleet module is disabled"})
	}

	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid vehicle ID"})
	}

	if err := c.fleetRepo.ClearFault(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Vehicle not found"})
		}
		c.log.Error("failed to clear vehicle fault", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to clear fault"})
	}

	c.log.Info("vehicle fault cleared", logger.Uint64("vehicle_id", uint64(id)))
	return ctx.JSON(http.StatusOK, map[string]any{"id": id, "status": "cleared"})
}
