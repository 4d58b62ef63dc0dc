package repository

import (
	"context"
	"sync"

	"github.com/okanyedibela/waba-relay/internal/domain"
)

// MemoryChatRepository keeps all conversation state in process memory.
// State is lost on restart; clients re-sync through the query endpoints.
type MemoryChatRepository struct {
	mu    sync.RWMutex
	chats map[string]*chatState
	order []string // phones in insertion order of first contact
}

type chatState struct {
	chat     domain.Chat
	messages []domain.Message
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		chats: make(map[string]*chatState),
	}
}

// ensure returns the chat state for phone, creating it with defaults if
// absent. Caller must hold the write lock.
func (r *MemoryChatRepository) ensure(phone, name string) *chatState {
	if state, ok := r.chats[phone]; ok {
		return state
	}

	if name == "" {
		name = "+" + phone
	}

	state := &chatState{
		chat: domain.Chat{
			Phone: phone,
			Name:  name,
		},
	}
	r.chats[phone] = state
	r.order = append(r.order, phone)

	return state
}

func (r *MemoryChatRepository) GetOrCreate(ctx context.Context, phone, name string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.ensure(phone, name)
	chat := state.chat

	return &chat, nil
}

func (r *MemoryChatRepository) Append(ctx context.Context, phone string, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.ensure(phone, "")
	state.messages = append(state.messages, *msg)
	state.chat.LastMessage = msg.Text
	state.chat.LastTs = msg.Ts

	return nil
}

func (r *MemoryChatRepository) IncrementUnread(ctx context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.chats[phone]; ok {
		state.chat.Unread++
	}

	return nil
}

func (r *MemoryChatRepository) ResetUnread(ctx context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.chats[phone]
	if !ok {
		return false, nil
	}

	state.chat.Unread = 0

	return true, nil
}

// UpdateStatusByProviderID updates the status of the matching message in
// place. Returns false when no message matches; that is a no-op, not an
// error.
func (r *MemoryChatRepository) UpdateStatusByProviderID(
	ctx context.Context,
	phone, providerID string,
	status domain.MessageStatus,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.chats[phone]
	if !ok {
		return false, nil
	}

	for i := range state.messages {
		if state.messages[i].ProviderID == providerID {
			state.messages[i].Status = status
			return true, nil
		}
	}

	return false, nil
}

func (r *MemoryChatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chats := make([]domain.Chat, 0, len(r.order))
	for _, phone := range r.order {
		chats = append(chats, r.chats[phone].chat)
	}

	return chats, nil
}

func (r *MemoryChatRepository) Messages(ctx context.Context, phone string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.chats[phone]
	if !ok {
		return []domain.Message{}, nil
	}

	messages := make([]domain.Message, len(state.messages))
	copy(messages, state.messages)

	return messages, nil
}
