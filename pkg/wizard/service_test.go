package wizard

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/klokku/finplan/internal/event_bus"
	"github.com/klokku/finplan/internal/utils"
	"github.com/klokku/finplan/pkg/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionTTL = 30 * time.Minute

func setupService(t *testing.T) (*ServiceImpl, *event_bus.EventBus, *utils.MockClock) {
	t.Helper()
	clock := &utils.MockClock{FixedNow: t0}
	eventBus := event_bus.NewEventBus()
	service := NewService(NewRepository(), eventBus, clock, sessionTTL).(*ServiceImpl)
	ids := 0
	service.newId = func() string {
		ids++
		return "session-" + strconv.Itoa(ids)
	}
	return service, eventBus, clock
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should seed a session with the sample plan and its projection", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)

		// when
		session, err := service.Create(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "session-1", session.Id)
		assert.Equal(t, DefaultCompany, session.Company)
		assert.Equal(t, FirstStep, session.Step)
		assert.Equal(t, t0, session.CreatedAt)
		assert.Equal(t, DefaultAssumptions(), session.Assumptions)
		assert.Equal(t, projection.Project(DefaultAssumptions()), session.Projection)
		assert.Empty(t, session.Issues)
		assert.Equal(t, 0.0, session.Projection.Revenue[0])
		assert.InDelta(t, 20000.0, session.Projection.Revenue[1], 1e-9)
	})

	t.Run("should keep the session when a listener fails", func(t *testing.T) {
		// given
		service, eventBus, _ := setupService(t)
		eventBus.Subscribe(event_bus.WizardSessionCreatedType, func(e event_bus.Event) error { return errors.New("listener down") })

		// when
		session, err := service.Create(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, projection.Project(DefaultAssumptions()), session.Projection)
	})

	t.Run("should project and notify even when the request context is cancelled", func(t *testing.T) {
		// given
		service, eventBus, _ := setupService(t)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		var created []string
		event_bus.SubscribeTyped(eventBus, event_bus.WizardSessionCreatedType, func(e event_bus.EventT[event_bus.WizardSessionCreated]) error {
			created = append(created, e.Data.SessionId)
			return nil
		})

		// when
		session, err := service.Create(cancelled)

		// then
		require.NoError(t, err)
		assert.Equal(t, projection.Project(DefaultAssumptions()), session.Projection)
		assert.Equal(t, []string{"session-1"}, created)
		stored, err := service.Get(ctx, session.Id)
		require.NoError(t, err)
		assert.Equal(t, session.Projection, stored.Projection)
	})
}

func TestServiceImpl_Get(t *testing.T) {
	t.Run("should refresh the last access time", func(t *testing.T) {
		// given
		service, _, clock := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)
		clock.Advance(5 * time.Minute)

		// when
		session, err := service.Get(ctx, created.Id)

		// then
		require.NoError(t, err)
		assert.Equal(t, t0.Add(5*time.Minute), session.LastAccess)
		assert.Equal(t, t0, session.CreatedAt)
	})

	t.Run("should return ErrSessionNotFound", func(t *testing.T) {
		service, _, _ := setupService(t)

		_, err := service.Get(ctx, "missing")

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestServiceImpl_ReplaceSection(t *testing.T) {
	t.Run("should replace a list section as a whole and recalculate", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		session, err := service.ReplaceSection(ctx, created.Id, Replacement{
			Section: RevenueSection,
			RevenueDrivers: []projection.RevenueDriver{
				{Name: "Licences", StartMonth: 1, Units: 1, Price: 500},
			},
		})

		// then
		require.NoError(t, err)
		require.Len(t, session.Assumptions.RevenueDrivers, 1)
		assert.Equal(t, "Licences", session.Assumptions.RevenueDrivers[0].Name)
		assert.InDelta(t, 500.0, session.Projection.Revenue[0], 1e-9)
		assert.InDelta(t, 18000.0, projection.Summarize(session.Projection).TotalSales, 1e-9)
		assert.Equal(t, projection.Project(session.Assumptions), session.Projection)
	})

	t.Run("should recalculate even when the request context is cancelled", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)
		require.NotZero(t, created.Projection.Revenue[11])
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		session, err := service.ReplaceSection(cancelled, created.Id, Replacement{Section: RevenueSection})

		// then
		require.NoError(t, err)
		assert.Equal(t, projection.Series{}, session.Projection.Revenue)
		stored, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.Empty(t, stored.Assumptions.RevenueDrivers)
		assert.Equal(t, projection.Series{}, stored.Projection.Revenue)
		assert.Equal(t, projection.Project(stored.Assumptions), stored.Projection)
		assert.Equal(t, projection.Validate(stored.Assumptions), stored.Issues)
	})

	t.Run("should clear a list section with an empty replacement", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		session, err := service.ReplaceSection(ctx, created.Id, Replacement{Section: DebtsSection})

		// then
		require.NoError(t, err)
		assert.Empty(t, session.Assumptions.Debts)
		assert.Equal(t, projection.Series{}, session.Projection.Interest)
	})

	t.Run("should replace meta", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		session, err := service.ReplaceSection(ctx, created.Id, Replacement{
			Section: MetaSection,
			Meta:    Meta{Company: "Acme BV", OpeningCash: 1000, Equity: 5000},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, Meta{Company: "Acme BV", OpeningCash: 1000, Equity: 5000}, session.Meta())
		assert.InDelta(t, 1000+session.Projection.Cashflow[0], session.Projection.Cash[0], 1e-9)
	})

	t.Run("should report issues next to the projection", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		session, err := service.ReplaceSection(ctx, created.Id, Replacement{
			Section: TaxesSection,
			Taxes:   projection.Taxes{CITRatePct: 0.25, CITPaymentMonth: 7},
		})

		// then
		require.NoError(t, err)
		require.Len(t, session.Issues, 1)
		assert.Equal(t, "taxes.citPaymentMonth", session.Issues[0].Field)
	})

	t.Run("should reject an unknown section", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		_, err = service.ReplaceSection(ctx, created.Id, Replacement{Section: "ledger"})

		// then
		assert.ErrorIs(t, err, ErrUnknownSection)
	})

	t.Run("should return ErrSessionNotFound", func(t *testing.T) {
		service, _, _ := setupService(t)

		_, err := service.ReplaceSection(ctx, "missing", Replacement{Section: TaxesSection})

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestServiceImpl_Steps(t *testing.T) {
	t.Run("should clamp the requested step", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		high, err := service.SetStep(ctx, created.Id, 9)
		require.NoError(t, err)
		low, err := service.SetStep(ctx, created.Id, -2)
		require.NoError(t, err)

		// then
		assert.Equal(t, LastStep, high.Step)
		assert.Equal(t, FirstStep, low.Step)
	})

	t.Run("should move one step and stop at the bounds", func(t *testing.T) {
		// given
		service, _, _ := setupService(t)
		created, err := service.Create(ctx)
		require.NoError(t, err)

		// when
		back, err := service.Back(ctx, created.Id)
		require.NoError(t, err)
		next, err := service.Next(ctx, created.Id)
		require.NoError(t, err)
		_, err = service.SetStep(ctx, created.Id, LastStep)
		require.NoError(t, err)
		last, err := service.Next(ctx, created.Id)
		require.NoError(t, err)

		// then
		assert.Equal(t, FirstStep, back.Step)
		assert.Equal(t, 2, next.Step)
		assert.Equal(t, LastStep, last.Step)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	// given
	service, eventBus, _ := setupService(t)
	created, err := service.Create(ctx)
	require.NoError(t, err)
	var closed []event_bus.WizardSessionClosed
	event_bus.SubscribeTyped(eventBus, event_bus.WizardSessionClosedType, func(e event_bus.EventT[event_bus.WizardSessionClosed]) error {
		closed = append(closed, e.Data)
		return nil
	})

	// when
	deleted, err := service.Delete(ctx, created.Id)
	require.NoError(t, err)
	again, err := service.Delete(ctx, created.Id)
	require.NoError(t, err)

	// then
	assert.True(t, deleted)
	assert.False(t, again)
	assert.Equal(t, []event_bus.WizardSessionClosed{{SessionId: created.Id}}, closed)
	_, err = service.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceImpl_ExpireIdle(t *testing.T) {
	t.Run("should discard sessions idle longer than the ttl", func(t *testing.T) {
		// given
		service, _, clock := setupService(t)
		idle, err := service.Create(ctx)
		require.NoError(t, err)
		clock.Advance(20 * time.Minute)
		active, err := service.Create(ctx)
		require.NoError(t, err)
		clock.Advance(15 * time.Minute)

		// when
		removed, err := service.ExpireIdle(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		_, err = service.Get(ctx, idle.Id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = service.Get(ctx, active.Id)
		assert.NoError(t, err)
	})

	t.Run("should keep everything without a ttl", func(t *testing.T) {
		// given
		clock := &utils.MockClock{FixedNow: t0}
		service := NewService(NewRepository(), event_bus.NewEventBus(), clock, 0)
		_, err := service.Create(ctx)
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)

		// when
		removed, err := service.ExpireIdle(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})
}

func TestSweeper_Sweep(t *testing.T) {
	// given
	service, _, clock := setupService(t)
	created, err := service.Create(ctx)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	sweeper := NewSweeper(service, time.Minute)

	// when
	sweeper.Sweep(ctx)

	// then
	_, err = service.Get(ctx, created.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
