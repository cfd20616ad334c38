// Package extract pulls structured slot values out of free-form
// Spanish text. Extraction never fails a turn: fields that cannot be
// parsed are simply absent from the result.
package extract

import (
	"regexp"
	"time"

	"turnero/internal/domain"
	"turnero/internal/nlp"
)

// Extractor resolves slot values relative to a clock, injected so
// temporal tests can pin today.
type Extractor struct {
	now func() time.Time
}

func New(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

var fieldRefs = []struct {
	re   *regexp.Regexp
	slot domain.Slot
}{
	{regexp.MustCompile(`\b(nombre|llamo)\b`), domain.SlotName},
	{regexp.MustCompile(`\b(cedula|ci|documento)\b`), domain.SlotID},
	{regexp.MustCompile(`\b(fecha|dia)\b`), domain.SlotDate},
	{regexp.MustCompile(`\b(hora|horario)\b`), domain.SlotTime},
	{regexp.MustCompile(`\b(email|correo|mail)\b`), domain.SlotEmail},
}

// FieldRef resolves which slot a correction request is talking about.
func FieldRef(text string) (domain.Slot, bool) {
	folded := nlp.Normalize(text)
	for _, fr := range fieldRefs {
		if fr.re.MatchString(folded) {
			return fr.slot, true
		}
	}
	return "", false
}

// Extract collects every slot value present in the text, scoped by the
// fused intent and the slot currently awaited. A direct answer to a
// prompt is tried against the awaited slot first, then explicit shapes
// (emails, IDs, dates, times) are picked up regardless.
func (e *Extractor) Extract(text string, intent domain.Intent, awaiting domain.Slot) map[domain.Slot]string {
	out := map[domain.Slot]string{}
	today := e.now()

	put := func(slot domain.Slot, value string, err error) {
		if err == nil {
			if _, dup := out[slot]; !dup {
				out[slot] = value
			}
		}
	}

	if awaiting == domain.SlotName || intent == domain.IntentGiveName {
		name, err := ParseName(text)
		put(domain.SlotName, name, err)
	}
	if id, ok := FindID(text); ok {
		out[domain.SlotID] = id
	}
	if email, err := ParseEmail(text); err == nil {
		out[domain.SlotEmail] = email
	}

	wantDate := awaiting == domain.SlotDate || intent == domain.IntentGiveDate || intent == domain.IntentBook
	if wantDate {
		if d, err := ResolveDate(text, today); err == nil {
			out[domain.SlotDate] = d.Format("2006-01-02")
		}
	}
	wantTime := awaiting == domain.SlotTime || intent == domain.IntentChooseTime || intent == domain.IntentGiveDate || intent == domain.IntentBook
	if wantTime {
		if t, err := ResolveTime(text); err == nil {
			out[domain.SlotTime] = t
		}
	}
	return out
}
