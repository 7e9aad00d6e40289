package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

const (
	defaultTitle  = "New Chat"
	untitledTitle = "Untitled Chat"
	titleMaxLen   = 30
)

// Operaciones puras sobre el conjunto de sesiones: cada una devuelve un
// conjunto nuevo sin mutar el recibido, asi ningun observador ve estados
// parciales.

// NewSession crea una sesion vacia con titulo por defecto.
func NewSession(now time.Time) domain.Session {
	return domain.Session{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		Messages:  []domain.Message{},
		CreatedAt: now.UTC(),
		Revision:  1,
	}
}

// Prepend coloca la sesion nueva al frente, como hace el sidebar.
func Prepend(set []domain.Session, s domain.Session) []domain.Session {
	out := make([]domain.Session, 0, len(set)+1)
	out = append(out, s)
	return append(out, set...)
}

// Find devuelve la sesion con el id dado.
func Find(set []domain.Session, id string) (domain.Session, bool) {
	for _, s := range set {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}

// Rename fija el titulo recortado; vacio cae a "Untitled Chat". Id desconocido
// es un no-op.
func Rename(set []domain.Session, id, title string) []domain.Session {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledTitle
	}
	out := make([]domain.Session, len(set))
	copy(out, set)
	for i, s := range out {
		if s.ID == id {
			s.Title = title
			out[i] = s
			break
		}
	}
	return out
}

// Delete quita la sesion completa; nunca mensajes individuales.
func Delete(set []domain.Session, id string) ([]domain.Session, bool) {
	out := make([]domain.Session, 0, len(set))
	removed := false
	for _, s := range set {
		if s.ID == id {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

// Append agrega el mensaje al final del historial de la sesion indicada.
// Id desconocido es un no-op y se reporta con appended=false.
func Append(set []domain.Session, id string, msg domain.Message) ([]domain.Session, bool) {
	out := make([]domain.Session, len(set))
	copy(out, set)
	for i, s := range out {
		if s.ID != id {
			continue
		}
		history := make([]domain.Message, 0, len(s.Messages)+1)
		history = append(history, s.Messages...)
		history = append(history, msg)
		s.Messages = history
		out[i] = s
		return out, true
	}
	return out, false
}

// DeriveTitle es la derivacion automatica unica: primeros 30 caracteres del
// primer mensaje del usuario.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxLen {
		return text
	}
	return string(runes[:titleMaxLen])
}

// NextActive elige la sesion activa tras un delete: la primera restante o "".
func NextActive(set []domain.Session) string {
	if len(set) == 0 {
		return ""
	}
	return set[0].ID
}
