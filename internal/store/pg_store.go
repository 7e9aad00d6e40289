package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

// PgStore es la variante durable remota sobre Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Load(ctx context.Context) ([]domain.Session, error) {
	const query = `
		SELECT id, title, messages, created_at, revision
		FROM sessions
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: load sessions: %v", ErrPersistence, err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var (
			sess domain.Session
			raw  []byte
		)
		if err := rows.Scan(&sess.ID, &sess.Title, &raw, &sess.CreatedAt, &sess.Revision); err != nil {
			return nil, fmt.Errorf("%w: scan session: %v", ErrPersistence, err)
		}
		if err := json.Unmarshal(raw, &sess.Messages); err != nil {
			return nil, fmt.Errorf("%w: decode messages for %s: %v", ErrPersistence, sess.ID, err)
		}
		if sess.Messages == nil {
			sess.Messages = []domain.Message{}
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load sessions: %v", ErrPersistence, err)
	}
	return sessions, nil
}

// Upsert inserta o actualiza title/messages/revision. El guard de revision
// rechaza escrituras obsoletas: el update solo aplica con revision mayor.
func (s *PgStore) Upsert(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	const query = `
		INSERT INTO sessions (id, title, messages, created_at, revision)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = excluded.title, messages = excluded.messages, revision = excluded.revision
		WHERE sessions.revision < excluded.revision
	`
	tag, err := s.pool.Exec(ctx, query,
		session.ID,
		session.Title,
		raw,
		session.CreatedAt,
		session.Revision,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert session %s: %v", ErrPersistence, session.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s revision %d", ErrStaleWrite, session.ID, session.Revision)
	}
	return nil
}

func (s *PgStore) Remove(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("%w: delete session %s: %v", ErrPersistence, id, err)
	}
	return nil
}
