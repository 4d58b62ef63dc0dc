package repository

import (
	"context"
	"testing"

	"github.com/okanyedibela/waba-relay/internal/domain"
)

func TestMemoryChatRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	chat, err := repo.GetOrCreate(ctx, "15551234567", "Alice")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if chat.Name != "Alice" {
		t.Errorf("expected name Alice, got %q", chat.Name)
	}
	if chat.Unread != 0 {
		t.Errorf("expected unread 0, got %d", chat.Unread)
	}

	// Second call returns the existing chat untouched.
	chat, err = repo.GetOrCreate(ctx, "15551234567", "Bob")
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if chat.Name != "Alice" {
		t.Errorf("expected existing name Alice, got %q", chat.Name)
	}

	chats, _ := repo.ListChats(ctx)
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
}

func TestMemoryChatRepository_DefaultName(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	if err := repo.Append(ctx, "15551234567", &domain.Message{ID: "m1", Text: "hi", Ts: 100}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	chats, _ := repo.ListChats(ctx)
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
	if chats[0].Name != "+15551234567" {
		t.Errorf("expected default name +15551234567, got %q", chats[0].Name)
	}
}

func TestMemoryChatRepository_AppendUpdatesSummary(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	repo.Append(ctx, "15551234567", &domain.Message{ID: "m1", Text: "first", Ts: 100})
	repo.Append(ctx, "15551234567", &domain.Message{ID: "m2", Text: "second", Ts: 200})

	chats, _ := repo.ListChats(ctx)
	if chats[0].LastMessage != "second" {
		t.Errorf("expected last message %q, got %q", "second", chats[0].LastMessage)
	}
	if chats[0].LastTs != 200 {
		t.Errorf("expected last ts 200, got %d", chats[0].LastTs)
	}

	messages, _ := repo.Messages(ctx, "15551234567")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "first" || messages[1].Text != "second" {
		t.Errorf("expected messages in append order, got %+v", messages)
	}
}

func TestMemoryChatRepository_ListChatsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	phones := []string{"15550000001", "15550000002", "15550000003"}
	for _, phone := range phones {
		repo.GetOrCreate(ctx, phone, "")
	}

	// Touching an existing chat must not move it.
	repo.Append(ctx, "15550000001", &domain.Message{ID: "m1", Text: "hi", Ts: 100})

	chats, _ := repo.ListChats(ctx)
	if len(chats) != len(phones) {
		t.Fatalf("expected %d chats, got %d", len(phones), len(chats))
	}
	for i, phone := range phones {
		if chats[i].Phone != phone {
			t.Errorf("expected chat %d to be %s, got %s", i, phone, chats[i].Phone)
		}
	}
}

func TestMemoryChatRepository_UnreadCounter(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	repo.GetOrCreate(ctx, "15551234567", "")
	repo.IncrementUnread(ctx, "15551234567")
	repo.IncrementUnread(ctx, "15551234567")

	chats, _ := repo.ListChats(ctx)
	if chats[0].Unread != 2 {
		t.Fatalf("expected unread 2, got %d", chats[0].Unread)
	}

	known, err := repo.ResetUnread(ctx, "15551234567")
	if err != nil {
		t.Fatalf("ResetUnread returned error: %v", err)
	}
	if !known {
		t.Errorf("expected known phone")
	}

	chats, _ = repo.ListChats(ctx)
	if chats[0].Unread != 0 {
		t.Fatalf("expected unread 0 after reset, got %d", chats[0].Unread)
	}

	known, err = repo.ResetUnread(ctx, "19990000000")
	if err != nil {
		t.Fatalf("ResetUnread returned error: %v", err)
	}
	if known {
		t.Errorf("expected unknown phone to report false")
	}
}

func TestMemoryChatRepository_UpdateStatusByProviderID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChatRepository()

	repo.Append(ctx, "15551234567", &domain.Message{
		ID:         "m1",
		ProviderID: "wamid.1",
		Text:       "hi",
		Status:     domain.StatusSent,
	})

	updated, err := repo.UpdateStatusByProviderID(ctx, "15551234567", "wamid.1", domain.StatusDelivered)
	if err != nil {
		t.Fatalf("UpdateStatusByProviderID returned error: %v", err)
	}
	if !updated {
		t.Fatalf("expected a match for wamid.1")
	}

	messages, _ := repo.Messages(ctx, "15551234567")
	if messages[0].Status != domain.StatusDelivered {
		t.Errorf("expected status delivered, got %q", messages[0].Status)
	}
	if messages[0].Text != "hi" || messages[0].ID != "m1" {
		t.Errorf("expected other fields untouched, got %+v", messages[0])
	}

	updated, err = repo.UpdateStatusByProviderID(ctx, "15551234567", "wamid.unknown", domain.StatusRead)
	if err != nil {
		t.Fatalf("UpdateStatusByProviderID returned error: %v", err)
	}
	if updated {
		t.Errorf("expected no match for unknown provider id")
	}
}

func TestMemoryChatRepository_MessagesUnknownPhone(t *testing.T) {
	messages, err := NewMemoryChatRepository().Messages(context.Background(), "19990000000")
	if err != nil {
		t.Fatalf("Messages returned error: %v", err)
	}
	if messages == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
}
