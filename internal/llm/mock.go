package llm

import (
	"context"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
)

// MockGateway permite tests sin llamar a un proveedor real.
type MockGateway struct {
	Reply     string
	Err       error
	Histories [][]domain.Message
}

func (m *MockGateway) Send(_ context.Context, history []domain.Message) (domain.Message, error) {
	snapshot := make([]domain.Message, len(history))
	copy(snapshot, history)
	m.Histories = append(m.Histories, snapshot)
	if m.Err != nil {
		return domain.Message{}, m.Err
	}
	return domain.Message{Role: domain.RoleAssistant, Content: m.Reply}, nil
}

// MockImageGateway es el doble de ImageGateway para tests.
type MockImageGateway struct {
	URL string
	Err error
}

func (m *MockImageGateway) Generate(_ context.Context, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}
