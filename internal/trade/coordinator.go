package trade

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rs/xid"

	"tradehall.gg/internal/protocol"
	"tradehall.gg/internal/store"
	"tradehall.gg/internal/tuning"
)

// Notifier pushes a notification to one actor. Offline actors are dropped
// silently by the transport.
type Notifier interface {
	Notify(actor string, n protocol.TradeNotificationMsg)
}

// Presence answers whether an actor is currently connected.
type Presence interface {
	Online(actor string) bool
}

// Executor runs the committed swap for a session that reached Executing.
// *Engine is the production implementation.
type Executor interface {
	Execute(ctx context.Context, actorA string, offerA Offer, actorB string, offerB Offer) error
}

type Config struct {
	RequestExpiry time.Duration
	SessionIdle   time.Duration
	SweepEvery    time.Duration

	MaxItemsPerOffer int

	RequestLimit LimitConfig
	UpdateLimit  LimitConfig
	ConfirmLimit LimitConfig
}

func ConfigFromTuning(t tuning.Tuning) Config {
	return Config{
		RequestExpiry:    time.Duration(t.RequestExpirySeconds) * time.Second,
		SessionIdle:      time.Duration(t.SessionIdleSeconds) * time.Second,
		SweepEvery:       time.Duration(t.SweepEverySeconds) * time.Second,
		MaxItemsPerOffer: t.MaxItemsPerOffer,
		RequestLimit: LimitConfig{
			Max:    t.RateLimits.TradeRequestMax,
			Window: time.Duration(t.RateLimits.TradeRequestWindowSeconds) * time.Second,
		},
		UpdateLimit: LimitConfig{
			Max:    t.RateLimits.OfferUpdateMax,
			Window: time.Duration(t.RateLimits.OfferUpdateWindowSeconds) * time.Second,
		},
		ConfirmLimit: LimitConfig{
			Max:    t.RateLimits.ConfirmMax,
			Window: time.Duration(t.RateLimits.ConfirmWindowSeconds) * time.Second,
		},
	}
}

// Request is a pending invitation; it exists only between invite and
// accept/decline/expiry.
type Request struct {
	ID        string
	From      string
	To        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type pairKey struct {
	from string
	to   string
}

// Coordinator owns the request and session registries and routes every trade
// call to the right session. Registries are constructor-built so tests run
// isolated instances; there is no package-level state.
type Coordinator struct {
	cfg       Config
	gateway   *Gateway
	executor  Executor
	currency  store.Currency
	inventory store.Inventory
	notifier  Notifier
	presence  Presence
	log       *log.Logger

	audit   AuditLogger
	metrics *Metrics

	mu       sync.Mutex
	requests map[pairKey]*Request
	sessions map[string]*Session // both actors key the same session

	now func() time.Time
}

func NewCoordinator(cfg Config, g *Gateway, ex Executor, cur store.Currency, inv store.Inventory, n Notifier, p Presence, logger *log.Logger) *Coordinator {
	if cfg.RequestExpiry <= 0 {
		cfg.RequestExpiry = 60 * time.Second
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = 10 * time.Minute
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = 5 * time.Second
	}
	return &Coordinator{
		cfg:       cfg,
		gateway:   g,
		executor:  ex,
		currency:  cur,
		inventory: inv,
		notifier:  n,
		presence:  p,
		log:       logger,
		requests:  map[pairKey]*Request{},
		sessions:  map[string]*Session{},
		now:       time.Now,
	}
}

// Optional sinks (may stay nil).
func (c *Coordinator) SetAuditLogger(a AuditLogger) { c.audit = a }
func (c *Coordinator) SetMetrics(m *Metrics)        { c.metrics = m }

// SendRequest creates a pending invitation from one actor to another.
func (c *Coordinator) SendRequest(from, to string) error {
	if from == "" || to == "" {
		return errf(protocol.ErrInvalidRequest, "missing actor")
	}
	if from == to {
		return errf(protocol.ErrInvalidRequest, "cannot trade with yourself")
	}
	if err := c.allow(from, ActionTradeRequest, c.cfg.RequestLimit); err != nil {
		return err
	}
	if !c.presence.Online(to) {
		return errf(protocol.ErrTargetUnavailable, "%s is not connected", to)
	}

	now := c.now()
	c.mu.Lock()
	key := pairKey{from: from, to: to}
	if r, ok := c.requests[key]; ok {
		if now.Before(r.ExpiresAt) {
			c.mu.Unlock()
			return errf(protocol.ErrAlreadyPending, "request to %s already pending", to)
		}
		delete(c.requests, key) // expired, prune lazily
	}
	if c.sessions[from] != nil {
		c.mu.Unlock()
		return errf(protocol.ErrAlreadyNegotiating, "%s is already trading", from)
	}
	if c.sessions[to] != nil {
		c.mu.Unlock()
		return errf(protocol.ErrAlreadyNegotiating, "%s is already trading", to)
	}
	req := &Request{
		ID:        xid.New().String(),
		From:      from,
		To:        to,
		CreatedAt: now,
		ExpiresAt: now.Add(c.cfg.RequestExpiry),
	}
	c.requests[key] = req
	c.mu.Unlock()
	c.updateGauges()

	n := notification(protocol.NotifyRequest)
	n.From = from
	n.ExpiresAtUnix = req.ExpiresAt.Unix()
	c.notifier.Notify(to, n)
	return nil
}

// RespondRequest accepts or declines a pending invitation. Accepting
// atomically removes the request and creates the session; the
// one-session-per-actor invariant is re-checked here because either actor may
// have started a different trade since the invite.
func (c *Coordinator) RespondRequest(to, from string, accept bool) error {
	now := c.now()
	c.mu.Lock()
	key := pairKey{from: from, to: to}
	req := c.requests[key]
	if req == nil || !now.Before(req.ExpiresAt) {
		if req != nil {
			delete(c.requests, key)
		}
		c.mu.Unlock()
		return errf(protocol.ErrNoSuchRequest, "no pending request from %s", from)
	}
	delete(c.requests, key)

	if !accept {
		c.mu.Unlock()
		c.updateGauges()
		n := notification(protocol.NotifyCancelled)
		n.By = to
		c.notifier.Notify(from, n)
		return nil
	}

	if c.sessions[from] != nil || c.sessions[to] != nil {
		c.mu.Unlock()
		c.updateGauges()
		return errf(protocol.ErrAlreadyNegotiating, "a participant is already trading")
	}
	s := newSession(xid.New().String(), from, to, now)
	c.sessions[from] = s
	c.sessions[to] = s
	c.mu.Unlock()
	c.updateGauges()

	for _, actor := range []string{from, to} {
		n := notification(protocol.NotifyStarted)
		n.SessionID = s.ID
		n.With = s.Peer(actor)
		c.notifier.Notify(actor, n)
	}
	return nil
}

// UpdateOffer replaces the actor's side of the offer. The balance/ownership
// check here reads a snapshot and is advisory; the binding pass runs again at
// execution.
func (c *Coordinator) UpdateOffer(ctx context.Context, actor string, coins int64, itemRefs []string) error {
	s := c.sessionFor(actor)
	if s == nil {
		return errf(protocol.ErrNotInSession, "%s has no active trade", actor)
	}
	if err := c.allow(actor, ActionOfferUpdate, c.cfg.UpdateLimit); err != nil {
		return err
	}
	offer, err := NewOffer(coins, itemRefs)
	if err != nil {
		return err
	}
	if c.cfg.MaxItemsPerOffer > 0 && len(offer.ItemRefs) > c.cfg.MaxItemsPerOffer {
		return errf(protocol.ErrInvalidOffer, "more than %d items", c.cfg.MaxItemsPerOffer)
	}
	if offer.Coins > 0 {
		bal, err := c.currency.GetBalance(ctx, actor)
		if err != nil {
			return errf(protocol.ErrInternal, "read balance: %v", err)
		}
		if err := c.gateway.CheckCurrency(bal, offer.Coins); err != nil {
			return err
		}
	}
	if len(offer.ItemRefs) > 0 {
		items, err := c.inventory.GetItems(ctx, actor)
		if err != nil {
			return errf(protocol.ErrInternal, "read items: %v", err)
		}
		if err := c.gateway.CheckOwnership(items, offer.ItemRefs); err != nil {
			return err
		}
	}
	if err := s.UpdateOffer(actor, offer, c.now()); err != nil {
		return err
	}
	c.broadcastState(s, protocol.NotifyOfferUpdate)
	return nil
}

// Confirm sets the actor's flag; when it completes the pair, the session is
// handed to the executor exactly once.
func (c *Coordinator) Confirm(ctx context.Context, actor string) error {
	s := c.sessionFor(actor)
	if s == nil {
		return errf(protocol.ErrNotInSession, "%s has no active trade", actor)
	}
	if err := c.allow(actor, ActionConfirm, c.cfg.ConfirmLimit); err != nil {
		return err
	}
	fire, err := s.Confirm(actor, c.now())
	if err != nil {
		return err
	}
	c.broadcastState(s, protocol.NotifyConfirmStatus)
	if fire {
		c.execute(ctx, s)
	}
	return nil
}

// Cancel tears down the actor's session while it is still negotiating.
func (c *Coordinator) Cancel(actor string) error {
	s := c.sessionFor(actor)
	if s == nil {
		return errf(protocol.ErrNotInSession, "%s has no active trade", actor)
	}
	if !s.Cancel() {
		return errf(protocol.ErrInvalidRequest, "trade is %s", s.Status())
	}
	c.teardownCancelled(s, actor, []string{s.ActorA, s.ActorB})
	return nil
}

// HandleDisconnect is the presence hook: a dropped connection cancels the
// actor's negotiation immediately and silently drops their pending invites.
func (c *Coordinator) HandleDisconnect(actor string) {
	c.mu.Lock()
	for key := range c.requests {
		if key.from == actor || key.to == actor {
			delete(c.requests, key)
		}
	}
	c.mu.Unlock()
	c.updateGauges()

	s := c.sessionFor(actor)
	if s == nil {
		return
	}
	// If the session is already executing, the engine outcome tears it down.
	if !s.Cancel() {
		return
	}
	c.teardownCancelled(s, actor, []string{s.Peer(actor)})
}

// Run drives the periodic sweep for expired requests and idle sessions.
func (c *Coordinator) Run(ctx context.Context) error {
	t := time.NewTicker(c.cfg.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c.sweep(c.now())
		}
	}
}

func (c *Coordinator) sweep(now time.Time) {
	c.mu.Lock()
	for key, r := range c.requests {
		if !now.Before(r.ExpiresAt) {
			delete(c.requests, key) // expiry is silent; the requester times out
		}
	}
	var idle []*Session
	seen := map[string]struct{}{}
	for _, s := range c.sessions {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if now.Sub(s.LastActivity()) >= c.cfg.SessionIdle {
			idle = append(idle, s)
		}
	}
	c.mu.Unlock()
	c.updateGauges()

	for _, s := range idle {
		if !s.Cancel() {
			continue
		}
		if c.log != nil {
			c.log.Printf("session %s idle-cancelled", s.ID)
		}
		c.teardownCancelled(s, "", []string{s.ActorA, s.ActorB})
	}
}

func (c *Coordinator) execute(ctx context.Context, s *Session) {
	offA, offB := s.Offers()
	err := c.executor.Execute(ctx, s.ActorA, offA.Offer, s.ActorB, offB.Offer)
	if err != nil {
		s.markFailed()
		for _, actor := range []string{s.ActorA, s.ActorB} {
			n := notification(protocol.NotifyFailed)
			n.SessionID = s.ID
			n.Code = KindOf(err)
			n.Message = err.Error()
			c.notifier.Notify(actor, n)
		}
		c.auditSession(s, "FAILED", KindOf(err))
		if c.metrics != nil {
			c.metrics.TradesFailed.Inc()
		}
	} else {
		s.markCompleted()
		gainedA := offerView(s.ActorB, offB.Offer)
		gainedB := offerView(s.ActorA, offA.Offer)
		nA := notification(protocol.NotifyCompleted)
		nA.SessionID = s.ID
		nA.Gained = &gainedA
		gaveA := offerView(s.ActorA, offA.Offer)
		nA.Gave = &gaveA
		c.notifier.Notify(s.ActorA, nA)
		nB := notification(protocol.NotifyCompleted)
		nB.SessionID = s.ID
		nB.Gained = &gainedB
		gaveB := offerView(s.ActorB, offB.Offer)
		nB.Gave = &gaveB
		c.notifier.Notify(s.ActorB, nB)
		c.auditSession(s, "COMPLETED", "")
		if c.metrics != nil {
			c.metrics.TradesCompleted.Inc()
		}
	}
	c.removeSession(s)
}

func (c *Coordinator) teardownCancelled(s *Session, by string, recipients []string) {
	for _, actor := range recipients {
		n := notification(protocol.NotifyCancelled)
		n.SessionID = s.ID
		n.By = by
		c.notifier.Notify(actor, n)
	}
	c.auditSession(s, "CANCELLED", by)
	if c.metrics != nil {
		c.metrics.TradesCancelled.Inc()
	}
	c.removeSession(s)
}

// broadcastState pushes both offers, both confirmation flags and the
// advisory fairness block to both participants.
func (c *Coordinator) broadcastState(s *Session, kind string) {
	offA, offB := s.Offers()
	f := c.gateway.Fairness(offA.Offer, offB.Offer)
	offers := []protocol.OfferView{offerView(s.ActorA, offA.Offer), offerView(s.ActorB, offB.Offer)}
	confirms := []protocol.ConfirmView{
		{Actor: s.ActorA, Confirmed: offA.Confirmed},
		{Actor: s.ActorB, Confirmed: offB.Confirmed},
	}
	fairness := &protocol.FairnessView{
		Values:   map[string]int64{s.ActorA: f.ValueA, s.ActorB: f.ValueB},
		Balanced: f.Balanced,
	}
	for _, actor := range []string{s.ActorA, s.ActorB} {
		n := notification(kind)
		n.SessionID = s.ID
		n.Offers = offers
		n.Confirms = confirms
		n.Fairness = fairness
		c.notifier.Notify(actor, n)
	}
}

func (c *Coordinator) auditSession(s *Session, outcome, reason string) {
	if c.audit == nil {
		return
	}
	offA, offB := s.Offers()
	f := c.gateway.Fairness(offA.Offer, offB.Offer)
	e := AuditEntry{
		TimeUnix:  c.now().Unix(),
		SessionID: s.ID,
		Outcome:   outcome,
		Reason:    reason,
		ActorA:    s.ActorA,
		ActorB:    s.ActorB,
		CoinsA:    offA.Offer.Coins,
		ItemsA:    offA.Offer.ItemRefs,
		CoinsB:    offB.Offer.Coins,
		ItemsB:    offB.Offer.ItemRefs,
		ValueA:    f.ValueA,
		ValueB:    f.ValueB,
		Balanced:  f.Balanced,
	}
	if err := c.audit.WriteAudit(e); err != nil && c.log != nil {
		c.log.Printf("audit write: %v", err)
	}
}

func (c *Coordinator) allow(actor, kind string, cfg LimitConfig) error {
	err := c.gateway.CheckRateLimit(actor, kind, cfg)
	if err != nil && c.metrics != nil {
		c.metrics.RateLimited.Inc()
	}
	return err
}

func (c *Coordinator) sessionFor(actor string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[actor]
}

func (c *Coordinator) removeSession(s *Session) {
	c.mu.Lock()
	if c.sessions[s.ActorA] == s {
		delete(c.sessions, s.ActorA)
	}
	if c.sessions[s.ActorB] == s {
		delete(c.sessions, s.ActorB)
	}
	c.mu.Unlock()
	c.updateGauges()
}

func (c *Coordinator) updateGauges() {
	if c.metrics == nil {
		return
	}
	c.mu.Lock()
	pending := len(c.requests)
	seen := map[string]struct{}{}
	for _, s := range c.sessions {
		seen[s.ID] = struct{}{}
	}
	active := len(seen)
	c.mu.Unlock()
	c.metrics.PendingRequests.Set(float64(pending))
	c.metrics.ActiveSessions.Set(float64(active))
}

func notification(kind string) protocol.TradeNotificationMsg {
	return protocol.TradeNotificationMsg{
		Type:            protocol.TypeTradeNotification,
		ProtocolVersion: protocol.Version,
		Kind:            kind,
	}
}

func offerView(actor string, o Offer) protocol.OfferView {
	return protocol.OfferView{Actor: actor, Coins: o.Coins, ItemRefs: o.ItemRefs}
}
