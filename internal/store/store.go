package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

const defaultTitle = "New Chat"

var (
	// ErrPersistence marca fallos del backend durable remoto (red, constraint).
	ErrPersistence = errors.New("persistence failure")
	// ErrStaleWrite indica un upsert con revision igual o menor a la persistida.
	ErrStaleWrite = errors.New("stale session write")
	// ErrUnsupportedVersion indica un blob local con esquema desconocido.
	ErrUnsupportedVersion = errors.New("unsupported store version")
)

// Store abstrae el espejo durable de sesiones.
type Store interface {
	Load(ctx context.Context) ([]domain.Session, error)
	Upsert(ctx context.Context, session domain.Session) error
	Remove(ctx context.Context, id string) error
}

// NewDefaultSession crea la sesion inicial vacia.
func NewDefaultSession(now time.Time) domain.Session {
	return domain.Session{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		Messages:  []domain.Message{},
		CreatedAt: now.UTC(),
		Revision:  1,
	}
}

// Bootstrap carga el conjunto persistido. Si el backend remoto falla se arranca
// vacio (fail-open); un blob local corrupto si es fatal. Con cero sesiones crea
// y persiste exactamente una sesion "New Chat" antes de devolver control.
func Bootstrap(ctx context.Context, s Store, logger *zap.Logger) ([]domain.Session, error) {
	sessions, err := s.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrPersistence) {
			return nil, err
		}
		logger.Warn("session load failed, starting empty", zap.Error(err))
		sessions = nil
	}
	if len(sessions) > 0 {
		return sessions, nil
	}

	first := NewDefaultSession(time.Now())
	if err := s.Upsert(ctx, first); err != nil {
		return nil, err
	}
	return []domain.Session{first}, nil
}
