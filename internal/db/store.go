// Package db persists bookings and the conversation log in Postgres.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"turnero/internal/domain"
	"turnero/internal/extract"
)

var (
	ErrSlotFull      = errors.New("el horario ya no tiene cupo")
	ErrDoubleBooking = errors.New("ya existe un turno para esa cedula en esa fecha")
)

// slotCapacity is how many people share one 15-minute slot.
const slotCapacity = 3

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS turnos (
			turno_id TEXT PRIMARY KEY,
			codigo TEXT NOT NULL UNIQUE,
			conversation_id TEXT NOT NULL,
			nombre TEXT NOT NULL,
			cedula TEXT NOT NULL,
			fecha DATE NOT NULL,
			hora TEXT NOT NULL,
			email TEXT NOT NULL,
			estado TEXT NOT NULL DEFAULT 'confirmado',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turnos_fecha_hora ON turnos(fecha, hora);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_turnos_cedula_fecha ON turnos(cedula, fecha) WHERE estado = 'confirmado';`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			direction TEXT NOT NULL,
			content TEXT NOT NULL,
			intent TEXT,
			confidence DOUBLE PRECISION,
			source TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_messages_conv_created ON conversation_messages(conversation_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_messages_intent ON conversation_messages(intent, created_at);`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// AvailableSlots lists the 15-minute grid for a date with remaining
// capacity per time.
func (s *Store) AvailableSlots(ctx context.Context, date string) ([]domain.SlotCapacity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hora, COUNT(*)
		FROM turnos
		WHERE fecha=$1 AND estado='confirmado'
		GROUP BY hora
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := map[string]int{}
	for rows.Next() {
		var hora string
		var n int
		if err := rows.Scan(&hora, &n); err != nil {
			return nil, err
		}
		taken[hora] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.SlotCapacity, 0, 32)
	for h := extract.OpenHour; h < extract.CloseHour; h++ {
		for m := 0; m < 60; m += 15 {
			t := fmt.Sprintf("%02d:%02d", h, m)
			remaining := slotCapacity - taken[t]
			if remaining < 0 {
				remaining = 0
			}
			out = append(out, domain.SlotCapacity{Time: t, Remaining: remaining})
		}
	}
	return out, nil
}

// Book persists a confirmed ticket, assigning its id and code. The
// slot capacity check and the insert run in one transaction.
func (s *Store) Book(ctx context.Context, t *domain.ConfirmationTicket) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM turnos
		WHERE fecha=$1 AND hora=$2 AND estado='confirmado'
	`, t.Date, t.Time).Scan(&count)
	if err != nil {
		return "", err
	}
	if count >= slotCapacity {
		return "", ErrSlotFull
	}

	id := uuid.NewString()
	code := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:8]
	_, err = tx.Exec(ctx, `
		INSERT INTO turnos (turno_id, codigo, conversation_id, nombre, cedula, fecha, hora, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, code, t.ConversationID, t.Name, t.NationalID, t.Date, t.Time, t.Email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_turnos_cedula_fecha" {
			return "", ErrDoubleBooking
		}
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	t.Code = code
	t.IssuedAt = time.Now()
	return code, nil
}

// LogMessage appends one message to the conversation log.
func (s *Store) LogMessage(ctx context.Context, conversationID, direction, content string, intent domain.Intent, confidence float64, source domain.Source) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_messages (conversation_id, direction, content, intent, confidence, source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, conversationID, direction, content, string(intent), confidence, string(source))
	return err
}

// IntentDistribution counts classified user messages per intent since
// the given time.
func (s *Store) IntentDistribution(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT intent, COUNT(*)
		FROM conversation_messages
		WHERE direction='in' AND intent IS NOT NULL AND created_at >= $1
		GROUP BY intent
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		out[intent] = n
	}
	return out, rows.Err()
}

// SourceConfidence reports average fused confidence per signal source.
type SourceConfidence struct {
	Source   string  `json:"source"`
	Average  float64 `json:"average_confidence"`
	Messages int     `json:"messages"`
}

func (s *Store) ConfidenceStats(ctx context.Context, since time.Time) ([]SourceConfidence, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, AVG(confidence), COUNT(*)
		FROM conversation_messages
		WHERE direction='in' AND source IS NOT NULL AND created_at >= $1
		GROUP BY source
		ORDER BY COUNT(*) DESC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceConfidence
	for rows.Next() {
		var sc SourceConfidence
		if err := rows.Scan(&sc.Source, &sc.Average, &sc.Messages); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
