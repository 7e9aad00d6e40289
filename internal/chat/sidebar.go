package chat

import (
	"strings"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

// Filtro de presentacion del sidebar. No toca el ciclo de vida de sesiones.

// Filter devuelve, en el mismo orden, las sesiones cuyo titulo contiene la
// busqueda sin distinguir mayusculas. Query vacia devuelve todo.
func Filter(set []domain.Session, query string) []domain.Session {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return set
	}
	out := make([]domain.Session, 0, len(set))
	for _, s := range set {
		if strings.Contains(strings.ToLower(s.Title), query) {
			out = append(out, s)
		}
	}
	return out
}

// TruncateTitle acorta el titulo para el sidebar agregando "...".
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "..."
}
