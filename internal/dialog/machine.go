// Package dialog advances the per-conversation state machine: slot
// collection in order, informational detours that never abandon the
// flow, corrections, cancellation and final confirmation.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"turnero/internal/domain"
	"turnero/internal/extract"
	"turnero/internal/session"
	"turnero/internal/wait"
)

// AvailabilityQuerier answers which times remain bookable on a date.
type AvailabilityQuerier interface {
	AvailableSlots(ctx context.Context, date string) ([]domain.SlotCapacity, error)
}

// slotsPerTime is the booking capacity of each 15-minute slot.
const slotsPerTime = 3

// Outcome is what a turn produced. Book is set when the user confirmed
// a complete booking and the caller should emit the ticket.
type Outcome struct {
	Reply string
	Book  bool
}

type Machine struct {
	avail  AvailabilityQuerier
	now    func() time.Time
	logger *slog.Logger
}

func NewMachine(avail AvailabilityQuerier, now func() time.Time, logger *slog.Logger) *Machine {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{avail: avail, now: now, logger: logger}
}

// Step applies one fused intent plus its extracted values to the
// conversation and returns the reply. The conversation is mutated in
// place; the caller persists it.
func (m *Machine) Step(ctx context.Context, conv *session.Conversation, sig domain.Signal, values map[domain.Slot]string, text string) Outcome {
	switch sig.Intent {
	case domain.IntentCancel:
		return m.cancel(conv)

	case domain.IntentNegate:
		if conv.State == session.StateConfirming {
			return m.cancel(conv)
		}

	case domain.IntentAffirm:
		if conv.State == session.StateConfirming {
			return Outcome{Book: true}
		}

	case domain.IntentChangeField:
		return m.correct(conv, text)

	case domain.IntentGreet:
		if conv.State == session.StateIdle {
			return Outcome{Reply: msgGreet}
		}
		return Outcome{Reply: reprompt(conv, "¡Hola de nuevo!")}

	case domain.IntentThanks:
		return Outcome{Reply: reprompt(conv, msgThanks)}

	case domain.IntentGoodbye:
		return Outcome{Reply: msgGoodbye}

	case domain.IntentCost:
		return Outcome{Reply: reprompt(conv, msgCost)}

	case domain.IntentRequirements:
		return Outcome{Reply: reprompt(conv, msgRequirements)}

	case domain.IntentLocation:
		return Outcome{Reply: reprompt(conv, msgLocation)}

	case domain.IntentAvailability:
		return Outcome{Reply: reprompt(conv, m.answerAvailability(ctx, text))}

	case domain.IntentWaitTime:
		return Outcome{Reply: reprompt(conv, m.answerWait(ctx, text))}

	case domain.IntentAmbiguous:
		return m.recommend(ctx, conv)
	}

	return m.advance(conv, sig, values, text)
}

// advance applies extracted values and moves the collection flow.
func (m *Machine) advance(conv *session.Conversation, sig domain.Signal, values map[domain.Slot]string, text string) Outcome {
	if conv.State == session.StateIdle {
		if sig.Intent != domain.IntentBook && len(values) == 0 {
			return Outcome{Reply: msgMenu}
		}
		conv.State = session.StateCollecting
	}

	for slot, value := range values {
		conv.Slots.Set(slot, value)
	}

	if conv.Slots.Complete() {
		conv.State = session.StateConfirming
		conv.Awaiting = ""
		return Outcome{Reply: summary(conv.Slots)}
	}

	next := conv.Slots.Missing()
	if conv.State == session.StateConfirming {
		// A slot was corrected away and not yet refilled.
		conv.State = session.StateCollecting
	}

	asked := conv.Awaiting
	conv.Awaiting = next

	answered := sig.Source == domain.SourceContext || sig.Intent != domain.IntentBook
	if asked != "" && asked == next && len(values) == 0 && answered {
		// The user answered the prompt but nothing parsed.
		return Outcome{Reply: slotIssue(asked, text, m.now())}
	}
	return Outcome{Reply: prompt(next)}
}

func (m *Machine) cancel(conv *session.Conversation) Outcome {
	if conv.State == session.StateIdle && !conv.HasData() {
		return Outcome{Reply: msgNothingToCancel}
	}
	conv.Reset()
	return Outcome{Reply: msgCancelled}
}

// correct nulls exactly the named slot and re-asks for it, leaving the
// rest of the collected data intact.
func (m *Machine) correct(conv *session.Conversation, text string) Outcome {
	slot, ok := extract.FieldRef(text)
	if !ok {
		return Outcome{Reply: reprompt(conv, msgWhichField)}
	}
	conv.Slots.Clear(slot)
	conv.Awaiting = slot
	conv.State = session.StateCollecting
	return Outcome{Reply: fmt.Sprintf("Dale, corrijamos eso. %s", prompt(slot))}
}

func (m *Machine) answerAvailability(ctx context.Context, text string) string {
	date, err := extract.ResolveDate(text, m.now())
	if err != nil {
		date = extract.NextBusinessDay(m.now().AddDate(0, 0, 1))
	}
	day := date.Format("2006-01-02")
	caps, err := m.avail.AvailableSlots(ctx, day)
	if err != nil {
		m.logger.Warn("availability query failed", "date", day, "err", err)
		return msgAvailabilityErr
	}
	free := make([]string, 0, len(caps))
	for _, c := range caps {
		if c.Remaining > 0 {
			free = append(free, c.Time)
		}
	}
	if len(free) == 0 {
		return fmt.Sprintf("Para el %s no quedan horarios libres. ¿Querés que miremos otro día?", day)
	}
	shown := free
	if len(shown) > 8 {
		shown = shown[:8]
	}
	return fmt.Sprintf("Para el %s hay %d horarios libres, por ejemplo: %s.", day, len(free), strings.Join(shown, ", "))
}

func (m *Machine) answerWait(ctx context.Context, text string) string {
	now := m.now()
	occ := m.occupancy(ctx, extract.NextBusinessDay(now).Format("2006-01-02"))
	urgency := 5.0
	if strings.Contains(strings.ToLower(text), "urgente") {
		urgency = 8
	}
	est := wait.EstimateWait(occ, urgency, float64(now.Hour()))
	return fmt.Sprintf("El tiempo de espera estimado es de unos %.0f minutos. Temprano a la mañana suele haber menos gente.", est)
}

// recommend handles "whenever is best" style requests by rating the
// day bands with the fuzzy engine.
func (m *Machine) recommend(ctx context.Context, conv *session.Conversation) Outcome {
	day := extract.NextBusinessDay(m.now().AddDate(0, 0, 1)).Format("2006-01-02")
	occ := m.occupancy(ctx, day)
	bands := wait.ScoreBands(func(float64) float64 { return occ })
	best := bands[0]
	answer := fmt.Sprintf("Te recomiendo venir %s (%s), es la franja con menos espera.", best.Name, best.Window)
	if conv.State == session.StateCollecting && conv.Awaiting == domain.SlotTime {
		return Outcome{Reply: answer + " " + prompt(domain.SlotTime)}
	}
	return Outcome{Reply: reprompt(conv, answer)}
}

// occupancy derives a 0-100 load figure from remaining capacity.
func (m *Machine) occupancy(ctx context.Context, date string) float64 {
	caps, err := m.avail.AvailableSlots(ctx, date)
	if err != nil || len(caps) == 0 {
		return 50
	}
	var remaining, total int
	for _, c := range caps {
		remaining += c.Remaining
		total += slotsPerTime
	}
	if total == 0 {
		return 100
	}
	return 100 * float64(total-remaining) / float64(total)
}
