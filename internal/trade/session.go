package trade

import (
	"sync"
	"time"

	"tradehall.gg/internal/protocol"
)

type Status string

const (
	StatusNegotiating Status = "NEGOTIATING"
	StatusExecuting   Status = "EXECUTING"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusFailed      Status = "FAILED"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Session is the negotiation between exactly two actors. Status moves only
// forward: Negotiating -> Executing -> {Completed|Failed}, or
// Negotiating -> Cancelled. The session mutex is the per-session execution
// guard: the check-and-transition in Confirm happens in one critical section,
// so racing confirms serialize and exactly one observes the transition.
type Session struct {
	ID        string
	ActorA    string
	ActorB    string
	CreatedAt time.Time

	mu           sync.Mutex
	status       Status
	offerA       OfferState
	offerB       OfferState
	lastActivity time.Time
}

func newSession(id, actorA, actorB string, now time.Time) *Session {
	return &Session{
		ID:           id,
		ActorA:       actorA,
		ActorB:       actorB,
		CreatedAt:    now,
		status:       StatusNegotiating,
		lastActivity: now,
	}
}

func (s *Session) Has(actor string) bool {
	return actor == s.ActorA || actor == s.ActorB
}

func (s *Session) Peer(actor string) string {
	if actor == s.ActorA {
		return s.ActorB
	}
	return s.ActorA
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Offers returns copies of both sides.
func (s *Session) Offers() (a, b OfferState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a = OfferState{Offer: s.offerA.Offer.Clone(), Confirmed: s.offerA.Confirmed}
	b = OfferState{Offer: s.offerB.Offer.Clone(), Confirmed: s.offerB.Confirmed}
	return a, b
}

// UpdateOffer replaces the actor's side and resets BOTH confirmation flags,
// regardless of which side changed.
func (s *Session) UpdateOffer(actor string, o Offer, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusNegotiating {
		return errf(protocol.ErrInvalidRequest, "trade is %s", s.status)
	}
	switch actor {
	case s.ActorA:
		s.offerA.Offer = o
	case s.ActorB:
		s.offerB.Offer = o
	default:
		return errf(protocol.ErrNotInSession, "%s is not part of this trade", actor)
	}
	s.offerA.Confirmed = false
	s.offerB.Confirmed = false
	s.lastActivity = now
	return nil
}

// Confirm sets the actor's flag. When both flags are true it transitions to
// Executing inside the same critical section and reports fire=true; at most
// one caller per session ever sees fire=true.
func (s *Session) Confirm(actor string, now time.Time) (fire bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusNegotiating {
		return false, errf(protocol.ErrInvalidRequest, "trade is %s", s.status)
	}
	switch actor {
	case s.ActorA:
		s.offerA.Confirmed = true
	case s.ActorB:
		s.offerB.Confirmed = true
	default:
		return false, errf(protocol.ErrNotInSession, "%s is not part of this trade", actor)
	}
	s.lastActivity = now
	if s.offerA.Confirmed && s.offerB.Confirmed {
		s.status = StatusExecuting
		return true, nil
	}
	return false, nil
}

// Cancel moves Negotiating -> Cancelled. Reports false once the session has
// already left Negotiating (executing or terminal).
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusNegotiating {
		return false
	}
	s.status = StatusCancelled
	return true
}

func (s *Session) markCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusExecuting {
		s.status = StatusCompleted
	}
}

func (s *Session) markFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusExecuting {
		s.status = StatusFailed
	}
}
