// Package orchestrator runs one conversation turn end to end: fan out
// the classifiers, fuse their signals, extract entities and step the
// dialogue machine.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"turnero/internal/db"
	"turnero/internal/dialog"
	"turnero/internal/domain"
	"turnero/internal/extract"
	"turnero/internal/fusion"
	"turnero/internal/fuzzy"
	"turnero/internal/pattern"
	"turnero/internal/session"
)

// contextConfidence is the fixed trust given to the conversational
// expectation when a slot is awaited.
const contextConfidence = 0.95

// Booker commits a confirmed booking and returns its reference code.
type Booker interface {
	Book(ctx context.Context, t *domain.ConfirmationTicket) (string, error)
}

// IntentScorer is the external free-text classifier.
type IntentScorer interface {
	Enabled() bool
	Classify(ctx context.Context, text string) (domain.Signal, error)
}

// MessageLogger records the conversation for the dashboard. Optional.
type MessageLogger interface {
	LogMessage(ctx context.Context, conversationID, direction, content string, intent domain.Intent, confidence float64, source domain.Source) error
}

// TicketPublisher fans a confirmed booking out to downstream
// consumers. Optional.
type TicketPublisher interface {
	PublishBooked(t *domain.ConfirmationTicket)
}

type Service struct {
	pattern   *pattern.Classifier
	fuzzy     *fuzzy.Engine
	fusion    *fusion.Engine
	external  IntentScorer
	extractor *extract.Extractor
	machine   *dialog.Machine
	sessions  session.Store
	booker    Booker
	msgLog    MessageLogger
	publisher TicketPublisher
	logger    *slog.Logger

	externalTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Deps struct {
	Pattern   *pattern.Classifier
	Fuzzy     *fuzzy.Engine
	Fusion    *fusion.Engine
	External  IntentScorer
	Extractor *extract.Extractor
	Machine   *dialog.Machine
	Sessions  session.Store
	Booker    Booker
	MsgLog    MessageLogger
	Publisher TicketPublisher

	ExternalTimeout time.Duration
}

func New(deps Deps, logger *slog.Logger) *Service {
	if deps.ExternalTimeout <= 0 {
		deps.ExternalTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pattern:         deps.Pattern,
		fuzzy:           deps.Fuzzy,
		fusion:          deps.Fusion,
		external:        deps.External,
		extractor:       deps.Extractor,
		machine:         deps.Machine,
		sessions:        deps.Sessions,
		booker:          deps.Booker,
		msgLog:          deps.MsgLog,
		publisher:       deps.Publisher,
		logger:          logger,
		externalTimeout: deps.ExternalTimeout,
		locks:           make(map[string]*sync.Mutex),
	}
}

// lockConversation serializes turns per conversation id. Turns for
// different ids proceed independently.
func (s *Service) lockConversation(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// HandleTurn processes one user message and returns the reply.
func (s *Service) HandleTurn(ctx context.Context, req domain.TurnRequest) (domain.TurnResult, error) {
	if req.ConversationID == "" {
		return domain.TurnResult{}, fmt.Errorf("conversation_id is required")
	}
	if req.Message == "" {
		return domain.TurnResult{}, fmt.Errorf("message is required")
	}

	unlock := s.lockConversation(req.ConversationID)
	defer unlock()

	conv, err := s.sessions.Get(ctx, req.ConversationID)
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("load session: %w", err)
	}
	if conv == nil {
		conv = session.NewConversation(req.ConversationID)
	}

	signals := s.classify(ctx, req.Message, conv)
	fused := s.fusion.Fuse(signals)
	values := s.extractor.Extract(req.Message, fused.Intent, conv.Awaiting)

	s.logger.Info("turn classified",
		"conversation", req.ConversationID,
		"intent", fused.Intent,
		"confidence", fused.Confidence,
		"source", fused.Source,
		"state", conv.State,
		"awaiting", conv.Awaiting,
	)

	outcome := s.machine.Step(ctx, conv, fused, values, req.Message)

	var ticket *domain.ConfirmationTicket
	if outcome.Book {
		ticket, outcome.Reply = s.book(ctx, conv)
	}

	if err := s.sessions.Save(ctx, conv); err != nil {
		return domain.TurnResult{}, fmt.Errorf("save session: %w", err)
	}

	s.record(ctx, req, fused, outcome.Reply)

	return domain.TurnResult{
		ConversationID: req.ConversationID,
		Intent:         fused.Intent,
		Confidence:     fused.Confidence,
		Source:         fused.Source,
		Reply:          outcome.Reply,
		Slots:          conv.Slots,
		Ticket:         ticket,
	}, nil
}

// classify fans the four signal sources out and joins them. The
// external classifier runs under its own timeout and degrades to
// absence on failure.
func (s *Service) classify(ctx context.Context, message string, conv *session.Conversation) fusion.Signals {
	var signals fusion.Signals
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		sig := s.pattern.Classify(message)
		signals.Pattern = &sig
	}()
	go func() {
		defer wg.Done()
		sig := s.fuzzy.Score(message)
		signals.Fuzzy = &sig
	}()

	if s.external != nil && s.external.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.externalTimeout)
			defer cancel()
			sig, err := s.external.Classify(cctx, message)
			if err != nil {
				s.logger.Debug("external classifier unavailable", "err", err)
				return
			}
			signals.External = &sig
		}()
	}
	wg.Wait()

	if sig := s.contextSignal(conv, signals.Pattern); sig != nil {
		signals.Context = sig
	}
	return signals
}

// contextSignal asserts the booking action-intent when a slot is
// awaited, unless the pattern tier saw an override (correction,
// negation or cancellation). Free text given in direct answer to a
// question is not re-litigated by the general classifiers.
func (s *Service) contextSignal(conv *session.Conversation, pat *domain.Signal) *domain.Signal {
	if conv.State != session.StateCollecting || conv.Awaiting == "" {
		return nil
	}
	if pat != nil {
		switch pat.Intent {
		case domain.IntentCancel, domain.IntentNegate, domain.IntentChangeField:
			return nil
		case domain.IntentCost, domain.IntentRequirements, domain.IntentLocation,
			domain.IntentAvailability, domain.IntentWaitTime:
			// A deterministic informational detour is answered, then
			// the flow re-prompts. Fuzzy and external signals never
			// get this power.
			if pat.Confidence >= 0.90 {
				return nil
			}
		}
	}
	return &domain.Signal{Intent: domain.IntentBook, Confidence: contextConfidence, Source: domain.SourceContext}
}

// book commits the completed slots. Capacity races surface as a
// re-prompt for the time slot, not a failed turn.
func (s *Service) book(ctx context.Context, conv *session.Conversation) (*domain.ConfirmationTicket, string) {
	ticket := &domain.ConfirmationTicket{
		ConversationID: conv.ID,
		Name:           conv.Slots.Name,
		NationalID:     conv.Slots.ID,
		Date:           conv.Slots.Date,
		Time:           conv.Slots.Time,
		Email:          conv.Slots.Email,
	}
	code, err := s.booker.Book(ctx, ticket)
	switch {
	case errors.Is(err, db.ErrSlotFull):
		conv.Slots.Clear(domain.SlotTime)
		conv.State = session.StateCollecting
		conv.Awaiting = domain.SlotTime
		return nil, "Uy, ese horario se acaba de llenar. ¿Qué otra hora te viene bien? Atendemos de 07:00 a 15:00."
	case errors.Is(err, db.ErrDoubleBooking):
		conv.Reset()
		return nil, "Ya tenés un turno confirmado para esa fecha con esa cédula. Si querés cambiarlo, primero cancelalo."
	case err != nil:
		s.logger.Error("booking failed", "conversation", conv.ID, "err", err)
		return nil, "No pude confirmar el turno en este momento. Intentá de nuevo en un rato, tus datos siguen guardados."
	}

	ticket.Code = code
	if ticket.IssuedAt.IsZero() {
		ticket.IssuedAt = time.Now()
	}
	if s.publisher != nil {
		s.publisher.PublishBooked(ticket)
	}
	conv.Reset()
	return ticket, dialog.ConfirmedReply(ticket)
}

// record logs both sides of the turn, best effort.
func (s *Service) record(ctx context.Context, req domain.TurnRequest, fused domain.Signal, reply string) {
	if s.msgLog == nil {
		return
	}
	if err := s.msgLog.LogMessage(ctx, req.ConversationID, "in", req.Message, fused.Intent, fused.Confidence, fused.Source); err != nil {
		s.logger.Warn("log inbound message", "err", err)
	}
	if err := s.msgLog.LogMessage(ctx, req.ConversationID, "out", reply, "", 0, ""); err != nil {
		s.logger.Warn("log outbound message", "err", err)
	}
}

// Reset discards a conversation's state.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	unlock := s.lockConversation(conversationID)
	defer unlock()
	return s.sessions.Delete(ctx, conversationID)
}
