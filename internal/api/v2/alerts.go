package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salamtime/rentalops/internal/alerting"
	"github.com/salamtime/rentalops/internal/logger"
)

// initAlertRoutes registers the alert feed endpoints.
func (c *Controller) initAlertRoutes() {
	alerts := c.Group.Group("/alerts")

	alerts.GET("", c.ListAlerts)
	alerts.GET("/schema", c.GetAlertSchema)
	alerts.GET("/status", c.GetAlertStatus)
	alerts.POST("/refresh", c.RefreshAlerts)
	alerts.POST("/:id/read", c.MarkAlertRead)
	alerts.POST("/:id/dismiss", c.DismissAlert)
	alerts.GET("/stream", c.StreamAlerts)
}

// ListAlerts returns the current alert snapshot, optionally narrowed by
// category, priority, unread, and include_dismissed query parameters.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	var filter alerting.Filter

	if param := ctx.QueryParam("category"); param != "" {
		category, err := alerting.ParseCategory(param)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid category"})
		}
		filter.Category = category
	}
	if param := ctx.QueryParam("priority"); param != "" {
		priority, err := alerting.ParsePriority(param)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid priority"})
		}
		filter.Priority = priority
	}
	if param := ctx.QueryParam("unread"); param != "" {
		v := param == "true"
		filter.Unread = &v
	}
	filter.IncludeDismissed = ctx.QueryParam("include_dismissed") == "true"

	alerts := c.store.Alerts(filter)
	partial, _ := c.store.LastRefreshPartial()

	return ctx.JSON(http.StatusOK, map[string]any{
		"alerts":  alerts,
		"count":   len(alerts),
		"partial": partial,
	})
}

// GetAlertSchema describes the categories, severities, and priorities the
// feed can produce, for UI pickers.
func (c *Controller) GetAlertSchema(ctx echo.Context) error {
	categories := make([]map[string]string, 0, len(alerting.Categories()))
	for _, category := range alerting.Categories() {
		name, err := alerting.DisplayName(category)
		if err != nil {
			c.log.Error("alert schema has an unlabeled category", logger.Error(err))
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to build alert schema"})
		}
		categories = append(categories, map[string]string{
			"id":    string(category),
			"label": name,
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"categories": categories,
		"severities": []alerting.Severity{alerting.SeverityInfo, alerting.SeverityWarning, alerting.SeverityError},
		"priorities": []alerting.Priority{alerting.PriorityLow, alerting.PriorityMedium, alerting.PriorityHigh},
	})
}

// GetAlertStatus reports whether the last pass was partial and which
// sources dropped out.
func (c *Controller) GetAlertStatus(ctx echo.Context) error {
	partial, failures := c.store.LastRefreshPartial()
	return ctx.JSON(http.StatusOK, map[string]any{
		"last_refresh": c.store.LastRefresh(),
		"partial":      partial,
		"failures":     failures,
	})
}

// RefreshAlerts triggers an aggregation pass and returns the new snapshot
// size. A refresh already in flight is joined, not duplicated.
func (c *Controller) RefreshAlerts(ctx echo.Context) error {
	if err := c.store.Refresh(ctx.Request().Context()); err != nil {
		c.log.Error("alert refresh failed", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to refresh alerts"})
	}
	partial, _ := c.store.LastRefreshPartial()
	return ctx.JSON(http.StatusOK, map[string]any{
		"count":   len(c.store.Alerts(alerting.Filter{})),
		"partial": partial,
	})
}

// MarkAlertRead marks one alert as read. Unknown IDs succeed silently so
// a stale UI acting on a vanished alert does not surface an error.
func (c *Controller) MarkAlertRead(ctx echo.Context) error {
	id := ctx.Param("id")
	c.store.MarkRead(id)
	return ctx.JSON(http.StatusOK, map[string]string{"id": id, "status": "read"})
}

// DismissAlert hides one alert from default listings. Unknown IDs succeed
// silently, same as MarkAlertRead.
func (c *Controller) DismissAlert(ctx echo.Context) error {
	id := ctx.Param("id")
	c.store.Dismiss(id)
	return ctx.JSON(http.StatusOK, map[string]string{"id": id, "status": "dismissed"})
}
