package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/finplan/internal/event_bus"
	"github.com/klokku/finplan/internal/utils"
	"github.com/klokku/finplan/pkg/projection"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	ReplaceSection(ctx context.Context, id string, replacement Replacement) (Session, error)
	SetStep(ctx context.Context, id string, step int) (Session, error)
	Next(ctx context.Context, id string) (Session, error)
	Back(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ExpireIdle discards sessions not accessed within the session TTL and
	// returns how many were removed.
	ExpireIdle(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	repo       Repository
	eventBus   *event_bus.EventBus
	clock      utils.Clock
	sessionTTL time.Duration
	newId      func() string
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock, sessionTTL time.Duration) Service {
	return &ServiceImpl{
		repo:       repo,
		eventBus:   eventBus,
		clock:      clock,
		sessionTTL: sessionTTL,
		newId:      uuid.NewString,
	}
}

func (s *ServiceImpl) Create(ctx context.Context) (Session, error) {
	now := s.clock.Now()
	session := Session{
		Id:          s.newId(),
		Company:     DefaultCompany,
		Step:        FirstStep,
		Assumptions: DefaultAssumptions(),
		CreatedAt:   now,
		LastAccess:  now,
	}
	recalculate(&session)
	if err := s.repo.Store(ctx, session); err != nil {
		return Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	s.publish(ctx, event_bus.WizardSessionCreatedType, event_bus.WizardSessionCreated{SessionId: session.Id})
	return s.repo.Get(ctx, session.Id)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Session, error) {
	return s.repo.Update(ctx, id, func(session *Session) error {
		session.LastAccess = s.clock.Now()
		return nil
	})
}

// ReplaceSection stores the new section together with its recalculated
// projection in one update.
func (s *ServiceImpl) ReplaceSection(ctx context.Context, id string, replacement Replacement) (Session, error) {
	session, err := s.repo.Update(ctx, id, func(session *Session) error {
		if err := replacement.apply(session); err != nil {
			return fmt.Errorf("%q: %w", replacement.Section, err)
		}
		recalculate(session)
		session.LastAccess = s.clock.Now()
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	s.publish(ctx, event_bus.WizardSectionReplacedType, event_bus.WizardSectionReplaced{
		SessionId: id,
		Section:   string(replacement.Section),
	})
	return session, nil
}

func (s *ServiceImpl) SetStep(ctx context.Context, id string, step int) (Session, error) {
	return s.moveTo(ctx, id, func(int) int { return step })
}

func (s *ServiceImpl) Next(ctx context.Context, id string) (Session, error) {
	return s.moveTo(ctx, id, func(current int) int { return current + 1 })
}

func (s *ServiceImpl) Back(ctx context.Context, id string) (Session, error) {
	return s.moveTo(ctx, id, func(current int) int { return current - 1 })
}

func (s *ServiceImpl) moveTo(ctx context.Context, id string, target func(current int) int) (Session, error) {
	return s.repo.Update(ctx, id, func(session *Session) error {
		session.Step = ClampStep(target(session.Step))
		session.LastAccess = s.clock.Now()
		return nil
	})
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	s.publishClosed(ctx, id, false)
	return true, nil
}

func (s *ServiceImpl) ExpireIdle(ctx context.Context) (int, error) {
	if s.sessionTTL <= 0 {
		return 0, nil
	}
	removed, err := s.repo.DeleteIdleSince(ctx, s.clock.Now().Add(-s.sessionTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to expire idle sessions: %w", err)
	}
	for _, id := range removed {
		s.publishClosed(ctx, id, true)
	}
	return len(removed), nil
}

func (s *ServiceImpl) publishClosed(ctx context.Context, id string, expired bool) {
	s.publish(ctx, event_bus.WizardSessionClosedType, event_bus.WizardSessionClosed{SessionId: id, Expired: expired})
}

// publish notifies listeners after the change is stored. Failures are only
// logged, and a cancelled request does not suppress the notification.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	err := s.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), eventType, data))
	if err != nil {
		log.Errorf("failed to publish %s event: %v", eventType, err)
	}
}

func recalculate(session *Session) {
	session.Projection = projection.Project(session.Assumptions)
	session.Issues = projection.Validate(session.Assumptions)
	log.Debugf("recalculated projection of session %s", session.Id)
}
