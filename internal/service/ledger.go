// Package service exposes the ledger operations to transports. It stamps
// timestamps from the configured clock and, after a component accepts a
// mutation, records it in the audit journal and publishes an event.
//
// The three components are never cross-checked against each other: a card id
// is the only key they share, and keeping them consistent is the caller's job.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/clock"
	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/events"
	"github.com/jmerrifield20/cardledger/internal/grading"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"github.com/jmerrifield20/cardledger/internal/metrics"
	"github.com/jmerrifield20/cardledger/internal/ownership"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"go.uber.org/zap"
)

// Component names used in metrics, journal entries and events.
const (
	ComponentCards     = "cards"
	ComponentGrading   = "grading"
	ComponentOwnership = "ownership"
)

// LedgerService fronts the card registry, grading registry and ownership ledger.
type LedgerService struct {
	cards     cards.Registry
	grading   grading.Registry
	owners    ownership.Ledger
	clock     clock.Source
	journal   journal.Journal  // nil = no audit journal
	publisher events.Publisher // nil = no events
	logger    *zap.Logger
}

// NewLedgerService creates a LedgerService over the three components.
func NewLedgerService(c cards.Registry, g grading.Registry, o ownership.Ledger, clk clock.Source, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		cards:   c,
		grading: g,
		owners:  o,
		clock:   clk,
		logger:  logger,
	}
}

// SetJournal configures the audit journal. Set to nil to disable it.
func (s *LedgerService) SetJournal(j journal.Journal) {
	s.journal = j
}

// SetPublisher configures the event publisher. Set to nil to disable events.
func (s *LedgerService) SetPublisher(p events.Publisher) {
	s.publisher = p
}

// mutation describes an accepted (or attempted) write for bookkeeping.
type mutation struct {
	component string
	operation string
	action    string // journal action
	event     string // event type
	actor     principal.Principal
	subject   string
	height    uint64
	payload   any
}

// finish records metrics and logs for m. On success it also journals and
// publishes m. err is returned unchanged so callers see domain failures verbatim.
func (s *LedgerService) finish(ctx context.Context, m mutation, err error) error {
	if err != nil {
		kind := errcode.KindOf(err)
		if kind == "" && errors.Is(err, principal.ErrInvalid) {
			kind = errcode.KindInvalidPrincipal
		}
		if kind == "" {
			kind = "error"
			s.logger.Error("ledger operation failed",
				zap.String("component", m.component),
				zap.String("operation", m.operation),
				zap.String("subject", m.subject),
				zap.Error(err),
			)
		} else {
			s.logger.Debug("ledger operation rejected",
				zap.String("component", m.component),
				zap.String("operation", m.operation),
				zap.String("actor", string(m.actor)),
				zap.String("subject", m.subject),
				zap.String("kind", kind),
			)
		}
		metrics.RecordOperation(m.component, m.operation, kind)
		return err
	}

	metrics.RecordOperation(m.component, m.operation, "ok")
	s.appendJournal(ctx, m)
	s.publish(ctx, m)
	return nil
}

// appendJournal appends an audit entry in a non-fatal manner.
func (s *LedgerService) appendJournal(ctx context.Context, m mutation) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(ctx, journal.Record{
		Component: m.component,
		Action:    m.action,
		Actor:     string(m.actor),
		Subject:   m.subject,
		Height:    m.height,
		Payload:   m.payload,
	}); err != nil {
		s.logger.Error("journal append failed (non-fatal)",
			zap.String("action", m.action),
			zap.String("subject", m.subject),
			zap.Error(err),
		)
		return
	}
	metrics.RecordJournalAppend()
}

// publish sends an event in a non-fatal manner.
func (s *LedgerService) publish(ctx context.Context, m mutation) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.Event{
		Type:       m.event,
		Component:  m.component,
		Actor:      string(m.actor),
		Subject:    m.subject,
		Height:     m.height,
		Data:       m.payload,
		OccurredAt: time.Now().UTC(),
	})
	metrics.RecordEventPublish(err == nil)
	if err != nil {
		s.logger.Warn("event publish failed (non-fatal)",
			zap.String("type", m.event),
			zap.String("subject", m.subject),
			zap.Error(err),
		)
	}
}

func graderSubject(p principal.Principal) string {
	return "grader:" + string(p)
}
