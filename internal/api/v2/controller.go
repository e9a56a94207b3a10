// Package api implements the v2 HTTP interface over the alert feed and
// the pricing services.
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/salamtime/rentalops/internal/alerting"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/logger"
	"github.com/salamtime/rentalops/internal/pricing"
)

// Controller wires the HTTP routes to the services behind them.
type Controller struct {
	Group *echo.Group

	store     *alerting.Store
	pricing   *pricing.Service
	fleetRepo repository.FleetRepository
	log       logger.Logger
	ctx       context.Context
}

// New creates a Controller and registers all routes under group.
// fleetRepo may be nil when the fleet module is disabled; the fleet
// endpoints then answer 404.
func New(ctx context.Context, group *echo.Group, store *alerting.Store, pricingSvc *pricing.Service, fleetRepo repository.FleetRepository, log logger.Logger) *Controller {
	c := &Controller{
		Group:     group,
		store:     store,
		pricing:   pricingSvc,
		fleetRepo: fleetRepo,
		log:       log,
		ctx:       ctx,
	}
	c.initAlertRoutes()
	c.initPricingRoutes()
	c.initFleetRoutes()
	return c
}
