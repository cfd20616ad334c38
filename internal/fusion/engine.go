// Package fusion arbitrates between the classifier signals. The cascade
// is asymmetric on purpose: local deterministic and corroborated
// evidence dominates, and the external classifier is only trusted when
// it is very confident, because it has no view of conversation state
// and over-triggers its fallback label.
package fusion

import "turnero/internal/domain"

// Thresholds are tunable cut-offs for the cascade rules.
type Thresholds struct {
	PatternHigh  float64
	PatternLow   float64
	FuzzyMedium  float64
	FuzzyLow     float64
	ExternalHigh float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PatternHigh:  0.90,
		PatternLow:   0.70,
		FuzzyMedium:  0.50,
		FuzzyLow:     0.30,
		ExternalHigh: 0.85,
	}
}

// Signals collects the per-turn classifier verdicts. Nil means the
// source produced nothing (or timed out).
type Signals struct {
	Context  *domain.Signal
	Pattern  *domain.Signal
	Fuzzy    *domain.Signal
	External *domain.Signal
}

type Engine struct {
	t Thresholds
}

func New(t Thresholds) *Engine { return &Engine{t: t} }

// Fuse applies the ordered cascade and returns the winning signal.
func (e *Engine) Fuse(s Signals) domain.Signal {
	ctx := usable(s.Context)
	pat := usable(s.Pattern)
	fuz := usable(s.Fuzzy)
	ext := usable(s.External)

	// 1. Conversational expectation wins outright. Overrides were
	// already handled upstream by not emitting a context signal.
	if ctx != nil {
		return *ctx
	}

	// 2. Deterministic rules at high confidence.
	if pat != nil && pat.Confidence >= e.t.PatternHigh {
		return *pat
	}

	// 3. Corroboration between pattern and fuzzy on the same intent.
	if pat != nil && fuz != nil && pat.Intent == fuz.Intent {
		return domain.Signal{
			Intent:     pat.Intent,
			Confidence: (pat.Confidence + fuz.Confidence) / 2,
			Source:     domain.SourceConsensus,
		}
	}

	// 4. Fuzzy alone at medium confidence.
	if fuz != nil && fuz.Confidence >= e.t.FuzzyMedium {
		return *fuz
	}

	// 5. External, only when very confident and not its fallback label.
	if ext != nil && ext.Confidence >= e.t.ExternalHigh && ext.Intent != domain.IntentUnknown {
		return *ext
	}

	// 6. Pattern at the lower threshold.
	if pat != nil && pat.Confidence >= e.t.PatternLow {
		return *pat
	}

	// 7. Weak fuzzy, unless a confident external signal disagrees.
	if fuz != nil && fuz.Confidence >= e.t.FuzzyLow {
		overruled := ext != nil && ext.Confidence >= e.t.ExternalHigh &&
			ext.Intent != fuz.Intent && ext.Intent != domain.IntentUnknown
		if !overruled {
			return *fuz
		}
	}

	// 8. Best remaining signal, keeping its source for observability.
	best := ctx
	for _, cand := range []*domain.Signal{pat, fuz, ext} {
		if cand != nil && (best == nil || cand.Confidence > best.Confidence) {
			best = cand
		}
	}
	if best != nil {
		return *best
	}
	return domain.Signal{Intent: domain.IntentUnknown, Confidence: 0, Source: domain.SourceNone}
}

// usable filters out zero-confidence unknown verdicts, which the local
// classifiers emit to mean "no opinion".
func usable(s *domain.Signal) *domain.Signal {
	if s == nil {
		return nil
	}
	if s.Intent == "" || (s.Intent == domain.IntentUnknown && s.Confidence == 0) {
		return nil
	}
	return s
}
