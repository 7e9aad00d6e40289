package domain

import "time"

// Session es un hilo de conversacion con titulo mutable e historial ordenado.
// Revision crece en cada escritura durable para detectar writes obsoletos.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	Revision  int64     `json:"revision"`
}

// Clone devuelve una copia con historial propio, para snapshots seguros.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}
