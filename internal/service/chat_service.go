package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/internal/domain"
	"github.com/okanyedibela/waba-relay/pkg/logger"
	"github.com/okanyedibela/waba-relay/pkg/waba"
)

// ChatRepository is the pluggable conversation store. Two implementations
// exist: in-memory (default) and MySQL; the ingestor and sender never see
// the difference.
type ChatRepository interface {
	GetOrCreate(ctx context.Context, phone, name string) (*domain.Chat, error)
	Append(ctx context.Context, phone string, msg *domain.Message) error
	IncrementUnread(ctx context.Context, phone string) error
	ResetUnread(ctx context.Context, phone string) (bool, error)
	UpdateStatusByProviderID(ctx context.Context, phone, providerID string, status domain.MessageStatus) (bool, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	Messages(ctx context.Context, phone string) ([]domain.Message, error)
}

// Small internal interfaces so we can test without a real provider or
// websocket hub.
type providerClient interface {
	SendText(ctx context.Context, phone, text string) (*waba.SendTextResponse, error)
	MarkRead(ctx context.Context, providerID string) error
}

type broadcaster interface {
	Broadcast(event domain.Event)
}

// ProviderRefCache is the optional provider-id cache; a nil cache simply
// disables the fast path for status callbacks without a recipient phone.
type ProviderRefCache interface {
	CacheProviderRef(ctx context.Context, providerID string, ref domain.ProviderRef) error
	LookupProviderRef(ctx context.Context, providerID string) (*domain.ProviderRef, error)
}

// ChatService is the webhook-to-store-to-broadcast pipeline plus the
// outbound send path.
type ChatService struct {
	repo            ChatRepository
	provider        providerClient
	hub             broadcaster
	cache           ProviderRefCache // optional; nil disables caching
	markReadInbound bool
}

func NewChatService(
	repo ChatRepository,
	provider providerClient,
	hub broadcaster,
	cache ProviderRefCache,
	cfg environments.ProviderConfig,
) *ChatService {
	return &ChatService{
		repo:            repo,
		provider:        provider,
		hub:             hub,
		cache:           cache,
		markReadInbound: cfg.MarkReadInbound,
	}
}

// NormalizePhone strips every non-digit character so one real-world number
// maps to exactly one chat key regardless of formatting. Applied at every
// ingress point: webhook, send, manual chat creation and path params.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HandleWebhook processes one provider webhook delivery. It never returns
// an error: the HTTP acknowledgment to the provider is unconditional and
// payloads missing the expected nested structure are a benign no-op.
func (s *ChatService) HandleWebhook(ctx context.Context, payload *waba.WebhookPayload) {
	if payload == nil {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				s.ingestInbound(ctx, &msg)
			}
			for _, st := range change.Value.Statuses {
				s.applyStatus(ctx, &st)
			}
		}
	}
}

func (s *ChatService) ingestInbound(ctx context.Context, m *waba.InboundMessage) {
	phone := NormalizePhone(m.From)
	if phone == "" {
		logger.Debugf("Inbound message %s has no sender phone, ignoring", m.ID)
		return
	}

	text := domain.MediaPlaceholder
	if m.Type == "text" && m.Text != nil && m.Text.Body != "" {
		text = m.Text.Body
	}

	ts := time.Now().UnixMilli()
	if sec, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil && sec > 0 {
		ts = sec * 1000
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		ProviderID: m.ID,
		Text:       text,
		From:       phone,
		Ts:         ts,
		Status:     domain.StatusReceived,
	}

	if err := s.repo.Append(ctx, phone, msg); err != nil {
		logger.Errorf("Failed to store inbound message from %s: %v", phone, err)
		return
	}

	if err := s.repo.IncrementUnread(ctx, phone); err != nil {
		logger.Errorf("Failed to increment unread for %s: %v", phone, err)
	}

	s.hub.Broadcast(domain.Event{
		Type:    domain.EventNewMessage,
		Phone:   phone,
		Message: msg,
	})

	// The read receipt must never block ingestion of subsequent messages
	// or the webhook acknowledgment; failures are logged and swallowed.
	if s.markReadInbound && m.ID != "" {
		go s.markRead(context.WithoutCancel(ctx), m.ID)
	}
}

func (s *ChatService) markRead(ctx context.Context, providerID string) {
	if err := s.provider.MarkRead(ctx, providerID); err != nil {
		logger.Warnf("Mark-read for %s failed: %v", providerID, err)
	}
}

func (s *ChatService) applyStatus(ctx context.Context, st *waba.StatusUpdate) {
	phone := NormalizePhone(st.RecipientID)

	if phone == "" && s.cache != nil {
		if ref, err := s.cache.LookupProviderRef(ctx, st.ID); err == nil && ref != nil {
			phone = ref.Phone
		}
	}

	if phone == "" {
		logger.Debugf("Status callback %s has no resolvable phone, ignoring", st.ID)
		return
	}

	updated, err := s.repo.UpdateStatusByProviderID(ctx, phone, st.ID, domain.MessageStatus(st.Status))
	if err != nil {
		logger.Errorf("Failed to update status for provider id %s: %v", st.ID, err)
		return
	}

	if !updated {
		logger.Debugf("Status callback for unknown provider id %s, ignoring", st.ID)
		return
	}

	s.hub.Broadcast(domain.Event{
		Type:       domain.EventStatusUpdate,
		Phone:      phone,
		ProviderID: st.ID,
		Status:     domain.MessageStatus(st.Status),
	})
}

// Send forwards a text message to the provider and records it on success.
// A failed send mutates nothing; the caller resubmits.
func (s *ChatService) Send(ctx context.Context, phone, text string) (*domain.Message, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone must contain at least one digit")
	}

	resp, err := s.provider.SendText(ctx, phone, text)
	if err != nil {
		return nil, err
	}

	var providerID string
	if len(resp.Messages) > 0 {
		providerID = resp.Messages[0].ID
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		Text:       text,
		From:       domain.SenderMe,
		Ts:         time.Now().UnixMilli(),
		Status:     domain.StatusSent,
	}

	if err := s.repo.Append(ctx, phone, msg); err != nil {
		return nil, fmt.Errorf("message sent but not recorded: %w", err)
	}

	if s.cache != nil && providerID != "" {
		if err := s.cache.CacheProviderRef(ctx, providerID, domain.ProviderRef{
			Phone:     phone,
			MessageID: msg.ID,
		}); err != nil {
			logger.Warnf("Failed to cache provider ref %s: %v", providerID, err)
		}
	}

	s.hub.Broadcast(domain.Event{
		Type:    domain.EventMessageSent,
		Phone:   phone,
		Message: msg,
	})

	return msg, nil
}

func (s *ChatService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	return s.repo.ListChats(ctx)
}

// Messages returns the message history for a phone; an empty slice for an
// unknown phone, never an error.
func (s *ChatService) Messages(ctx context.Context, phone string) ([]domain.Message, error) {
	return s.repo.Messages(ctx, NormalizePhone(phone))
}

// CreateChat is idempotent: a known phone returns the existing chat
// untouched.
func (s *ChatService) CreateChat(ctx context.Context, name, phone string) (*domain.Chat, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone must contain at least one digit")
	}

	return s.repo.GetOrCreate(ctx, phone, name)
}

// MarkChatRead resets the unread counter; unknown phones are a no-op.
func (s *ChatService) MarkChatRead(ctx context.Context, phone string) (bool, error) {
	return s.repo.ResetUnread(ctx, NormalizePhone(phone))
}
