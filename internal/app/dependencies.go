package app

import (
	"fmt"

	"github.com/klokku/finplan/internal/config"
	"github.com/klokku/finplan/internal/event_bus"
	"github.com/klokku/finplan/internal/utils"
	"github.com/klokku/finplan/pkg/projection"
	"github.com/klokku/finplan/pkg/wizard"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	CurrencyFormatter  *projection.CurrencyFormatter
	ProjectionRenderer *projection.CsvProjectionRendererImpl
	ProjectionHandler  *projection.Handler

	WizardRepository wizard.Repository
	WizardService    wizard.Service
	WizardHandler    *wizard.Handler
	SessionSweeper   *wizard.Sweeper
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	currency, err := projection.NewCurrencyFormatter(cfg.Export.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to build currency formatter: %w", err)
	}
	deps.CurrencyFormatter = currency
	deps.ProjectionRenderer = projection.NewCsvProjectionRenderer()
	deps.ProjectionHandler = projection.NewHandler(deps.ProjectionRenderer, deps.CurrencyFormatter)

	deps.WizardRepository = wizard.NewRepository()
	deps.WizardService = wizard.NewService(deps.WizardRepository, deps.EventBus, deps.Clock, cfg.Wizard.SessionTTL)
	deps.WizardHandler = wizard.NewHandler(deps.WizardService, deps.ProjectionRenderer, deps.CurrencyFormatter)
	deps.SessionSweeper = wizard.NewSweeper(deps.WizardService, cfg.Wizard.SweepInterval)

	event_bus.SubscribeTyped[event_bus.WizardSessionClosed](
		deps.EventBus,
		event_bus.WizardSessionClosedType,
		func(e event_bus.EventT[event_bus.WizardSessionClosed]) error {
			log.WithFields(log.Fields{
				"session": e.Data.SessionId,
				"expired": e.Data.Expired,
			}).Info("Wizard session closed")
			return nil
		},
	)

	return deps, nil
}
