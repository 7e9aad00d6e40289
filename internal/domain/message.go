package domain

// Roles permitidos dentro de un historial de conversacion.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message es un turno dentro de una conversacion.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
