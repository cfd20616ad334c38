package fuzzy

import (
	"log/slog"
	"testing"

	"turnero/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultTable(), slog.Default())
}

func TestScoreBookingPhrase(t *testing.T) {
	got := newTestEngine().Score("quiero sacar un turno")
	if got.Intent != domain.IntentBook {
		t.Fatalf("intent=%s, want %s", got.Intent, domain.IntentBook)
	}
	if got.Confidence <= 0.5 {
		t.Fatalf("confidence=%.2f, want > 0.5", got.Confidence)
	}
	if got.Source != domain.SourceFuzzy {
		t.Fatalf("source=%s", got.Source)
	}
}

func TestScoreRecoversMisspellings(t *testing.T) {
	got := newTestEngine().Score("kiero sakar turno")
	if got.Intent != domain.IntentBook {
		t.Fatalf("intent=%s, want %s", got.Intent, domain.IntentBook)
	}
}

func TestScoreNormalizesByLength(t *testing.T) {
	e := newTestEngine()
	short := e.Score("quiero turno")
	long := e.Score("quiero turno y de paso les cuento que hoy me levante temprano con muchas ganas de resolver todos mis tramites pendientes")
	if long.Confidence >= short.Confidence {
		t.Fatalf("long=%.2f short=%.2f, long message must not score higher", long.Confidence, short.Confidence)
	}
}

func TestScoreClampsToOne(t *testing.T) {
	got := newTestEngine().Score("turno")
	if got.Confidence > 1 {
		t.Fatalf("confidence=%.2f, must be clamped to 1", got.Confidence)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	got := newTestEngine().Score("   ")
	if got.Intent != domain.IntentUnknown || got.Confidence != 0 {
		t.Fatalf("got %+v, want unknown at 0", got)
	}
}

func TestScoreNoKeywords(t *testing.T) {
	got := newTestEngine().Score("xyz zzz www")
	if got.Intent != domain.IntentUnknown || got.Confidence != 0 {
		t.Fatalf("got %+v, want unknown at 0", got)
	}
}

func TestPhraseOutweighsSingleWord(t *testing.T) {
	got := newTestEngine().Score("lo antes posible porfa")
	if got.Intent != domain.IntentAmbiguous {
		t.Fatalf("intent=%s, want %s", got.Intent, domain.IntentAmbiguous)
	}
}
