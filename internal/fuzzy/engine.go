// Package fuzzy scores messages against per-intent keyword tiers and
// returns a continuous membership confidence.
package fuzzy

import (
	"log/slog"
	"strings"
	"sync"

	"turnero/internal/domain"
	"turnero/internal/nlp"
)

const (
	weightHigh   = 1.0
	weightMedium = 0.6
	weightLow    = 0.3

	// Phrases carry more evidence than single words.
	phraseMultiplier = 2.0
)

type tierRank int

const (
	rankNone tierRank = iota
	rankLow
	rankMedium
	rankHigh
)

// Engine holds the keyword table. The table can be swapped at runtime
// by the hot-reload watcher, so reads go through a mutex.
type Engine struct {
	mu     sync.RWMutex
	table  Table
	logger *slog.Logger
}

func NewEngine(table Table, logger *slog.Logger) *Engine {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{table: table, logger: logger}
}

func (e *Engine) setTable(t Table) {
	e.mu.Lock()
	e.table = t
	e.mu.Unlock()
}

// Score returns the best-matching intent and its normalized membership.
// Scores are normalized by token count so long messages do not win by
// accumulation, and ties break toward the intent with the strongest
// tier evidence.
func (e *Engine) Score(message string) domain.Signal {
	tokens := nlp.Tokens(message)
	if len(tokens) == 0 {
		return domain.Signal{Intent: domain.IntentUnknown, Confidence: 0, Source: domain.SourceFuzzy}
	}
	text := " " + strings.Join(tokens, " ") + " "

	e.mu.RLock()
	table := e.table
	e.mu.RUnlock()

	var (
		bestIntent domain.Intent = domain.IntentUnknown
		bestScore  float64
		bestRank   tierRank
	)
	for intent, tiers := range table {
		score, rank := scoreIntent(text, tiers)
		if score == 0 {
			continue
		}
		normalized := score / float64(len(tokens))
		if normalized > 1 {
			normalized = 1
		}
		if normalized > bestScore || (normalized == bestScore && rank > bestRank) {
			bestIntent, bestScore, bestRank = intent, normalized, rank
		}
	}
	if bestScore == 0 {
		return domain.Signal{Intent: domain.IntentUnknown, Confidence: 0, Source: domain.SourceFuzzy}
	}
	return domain.Signal{Intent: bestIntent, Confidence: bestScore, Source: domain.SourceFuzzy}
}

func scoreIntent(text string, tiers Tiers) (float64, tierRank) {
	var score float64
	rank := rankNone
	add := func(keywords []string, weight float64, r tierRank) {
		for _, kw := range keywords {
			if !strings.Contains(text, " "+kw+" ") {
				continue
			}
			mult := 1.0
			if strings.Contains(kw, " ") {
				mult = phraseMultiplier
			}
			score += weight * mult
			if r > rank {
				rank = r
			}
		}
	}
	add(tiers.High, weightHigh, rankHigh)
	add(tiers.Medium, weightMedium, rankMedium)
	add(tiers.Low, weightLow, rankLow)
	return score, rank
}
