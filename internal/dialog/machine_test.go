package dialog

import (
	"context"
	"strings"
	"testing"
	"time"

	"turnero/internal/domain"
	"turnero/internal/session"
)

type fakeAvail struct {
	caps []domain.SlotCapacity
	err  error
}

func (f *fakeAvail) AvailableSlots(ctx context.Context, date string) ([]domain.SlotCapacity, error) {
	return f.caps, f.err
}

func testMachine() *Machine {
	now := func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return NewMachine(&fakeAvail{caps: []domain.SlotCapacity{{Time: "07:00", Remaining: 3}}}, now, nil)
}

func filledConversation() *session.Conversation {
	conv := session.NewConversation("c1")
	conv.State = session.StateConfirming
	conv.Slots.Set(domain.SlotName, "Juan Pérez")
	conv.Slots.Set(domain.SlotID, "5264036")
	conv.Slots.Set(domain.SlotDate, "2026-03-05")
	conv.Slots.Set(domain.SlotTime, "09:00")
	conv.Slots.Set(domain.SlotEmail, "juan@example.com")
	return conv
}

func TestCancelWithNothingInProgress(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentCancel}, nil, "cancelar")
	if out.Reply != msgNothingToCancel {
		t.Fatalf("reply = %q", out.Reply)
	}
	if conv.State != session.StateIdle {
		t.Fatalf("state = %q", conv.State)
	}
}

func TestCancelMidFlowClearsEverything(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	conv.State = session.StateCollecting
	conv.Awaiting = domain.SlotDate
	conv.Slots.Set(domain.SlotName, "Juan Pérez")
	conv.Slots.Set(domain.SlotID, "5264036")

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentCancel}, nil, "cancelar todo")
	if out.Reply != msgCancelled {
		t.Fatalf("reply = %q", out.Reply)
	}
	if conv.State != session.StateIdle || conv.Awaiting != "" || conv.HasData() {
		t.Fatalf("conversation not reset: %+v", conv)
	}
}

func TestNegateAtConfirmationCancels(t *testing.T) {
	m := testMachine()
	conv := filledConversation()
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentNegate}, nil, "no")
	if out.Reply != msgCancelled || out.Book {
		t.Fatalf("out = %+v", out)
	}
	if conv.HasData() {
		t.Fatalf("slots survived the cancellation")
	}
}

func TestAffirmAtConfirmationBooks(t *testing.T) {
	m := testMachine()
	conv := filledConversation()
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentAffirm}, nil, "sí")
	if !out.Book {
		t.Fatalf("expected booking outcome, got %+v", out)
	}
}

func TestCorrectionClearsOnlyNamedSlot(t *testing.T) {
	m := testMachine()
	conv := filledConversation()

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentChangeField}, nil, "quiero cambiar la fecha")
	if conv.Slots.Get(domain.SlotDate) != "" {
		t.Fatalf("date slot not cleared")
	}
	if conv.Slots.Get(domain.SlotName) != "Juan Pérez" || conv.Slots.Get(domain.SlotTime) != "09:00" {
		t.Fatalf("other slots lost: %+v", conv.Slots)
	}
	if conv.State != session.StateCollecting || conv.Awaiting != domain.SlotDate {
		t.Fatalf("state=%q awaiting=%q", conv.State, conv.Awaiting)
	}
	if !strings.Contains(out.Reply, prompts[domain.SlotDate]) {
		t.Fatalf("reply does not re-ask the date: %q", out.Reply)
	}

	// Refilling the corrected slot returns to confirmation.
	out = m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentBook, Source: domain.SourceContext},
		map[domain.Slot]string{domain.SlotDate: "2026-03-06"}, "el viernes")
	if conv.State != session.StateConfirming {
		t.Fatalf("state = %q after refill", conv.State)
	}
	if !strings.Contains(out.Reply, "2026-03-06") || !strings.Contains(out.Reply, "¿Confirmás el turno?") {
		t.Fatalf("summary not shown: %q", out.Reply)
	}
}

func TestCorrectionWithoutFieldAsksWhich(t *testing.T) {
	m := testMachine()
	conv := filledConversation()
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentChangeField}, nil, "eso está mal")
	if !strings.Contains(out.Reply, msgWhichField) {
		t.Fatalf("reply = %q", out.Reply)
	}
	if conv.Slots.Get(domain.SlotDate) == "" {
		t.Fatalf("a slot was cleared without a field reference")
	}
}

func TestInformationalDetourKeepsFlow(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	conv.State = session.StateCollecting
	conv.Awaiting = domain.SlotID

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentCost}, nil, "¿cuánto cuesta?")
	if !strings.Contains(out.Reply, msgCost) {
		t.Fatalf("cost answer missing: %q", out.Reply)
	}
	if !strings.Contains(out.Reply, prompts[domain.SlotID]) {
		t.Fatalf("flow not resumed: %q", out.Reply)
	}
	if conv.State != session.StateCollecting || conv.Awaiting != domain.SlotID {
		t.Fatalf("detour mutated the flow: state=%q awaiting=%q", conv.State, conv.Awaiting)
	}
}

func TestIdleNonBookingGetsMenu(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentUnknown}, nil, "asdf")
	if out.Reply != msgMenu {
		t.Fatalf("reply = %q", out.Reply)
	}
	if conv.State != session.StateIdle {
		t.Fatalf("state = %q", conv.State)
	}
}

func TestBookingStartsCollection(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentBook}, nil, "quiero un turno")
	if conv.State != session.StateCollecting || conv.Awaiting != domain.SlotName {
		t.Fatalf("state=%q awaiting=%q", conv.State, conv.Awaiting)
	}
	if out.Reply != prompts[domain.SlotName] {
		t.Fatalf("reply = %q", out.Reply)
	}
}

func TestUnparseableAnswerExplainsFormat(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	conv.State = session.StateCollecting
	conv.Awaiting = domain.SlotTime
	conv.Slots.Set(domain.SlotName, "Juan Pérez")
	conv.Slots.Set(domain.SlotID, "5264036")
	conv.Slots.Set(domain.SlotDate, "2026-03-05")

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentBook, Source: domain.SourceContext}, nil, "a las 20")
	if !strings.Contains(out.Reply, "07:00 a 15:00") {
		t.Fatalf("reply does not explain service hours: %q", out.Reply)
	}
	if conv.Awaiting != domain.SlotTime {
		t.Fatalf("awaiting = %q", conv.Awaiting)
	}
}

func TestAvailabilityAnswerListsFreeTimes(t *testing.T) {
	avail := &fakeAvail{caps: []domain.SlotCapacity{
		{Time: "07:00", Remaining: 0},
		{Time: "07:15", Remaining: 2},
		{Time: "07:30", Remaining: 3},
	}}
	now := func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	m := NewMachine(avail, now, nil)
	conv := session.NewConversation("c1")

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentAvailability}, nil, "¿hay lugar para mañana?")
	if !strings.Contains(out.Reply, "2 horarios libres") {
		t.Fatalf("reply = %q", out.Reply)
	}
	if strings.Contains(out.Reply, "07:00") && !strings.Contains(out.Reply, "07:15") {
		t.Fatalf("full slot listed as free: %q", out.Reply)
	}
}

func TestAmbiguousRequestRecommendsBand(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	conv.State = session.StateCollecting
	conv.Awaiting = domain.SlotTime

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentAmbiguous}, nil, "lo antes posible")
	if !strings.Contains(out.Reply, "Te recomiendo venir") {
		t.Fatalf("no recommendation: %q", out.Reply)
	}
	if !strings.Contains(out.Reply, prompts[domain.SlotTime]) {
		t.Fatalf("time not re-asked: %q", out.Reply)
	}
	if conv.Awaiting != domain.SlotTime {
		t.Fatalf("awaiting = %q", conv.Awaiting)
	}
}

func TestCompletionShowsSummary(t *testing.T) {
	m := testMachine()
	conv := session.NewConversation("c1")
	conv.State = session.StateCollecting
	conv.Awaiting = domain.SlotEmail
	conv.Slots.Set(domain.SlotName, "Juan Pérez")
	conv.Slots.Set(domain.SlotID, "5264036")
	conv.Slots.Set(domain.SlotDate, "2026-03-05")
	conv.Slots.Set(domain.SlotTime, "09:00")

	out := m.Step(context.Background(), conv, domain.Signal{Intent: domain.IntentBook, Source: domain.SourceContext},
		map[domain.Slot]string{domain.SlotEmail: "juan@example.com"}, "juan@example.com")
	if conv.State != session.StateConfirming {
		t.Fatalf("state = %q", conv.State)
	}
	for _, want := range []string{"Juan Pérez", "5264036", "2026-03-05", "09:00", "juan@example.com"} {
		if !strings.Contains(out.Reply, want) {
			t.Fatalf("summary missing %q: %q", want, out.Reply)
		}
	}
}
