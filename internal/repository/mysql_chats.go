package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okanyedibela/waba-relay/internal/domain"
)

// MySQLChatRepository is the persistent variant of the conversation store,
// selected with STORE_DRIVER=mysql.
type MySQLChatRepository struct {
	db *sqlx.DB
}

func NewMySQLChatRepository(db *sqlx.DB) *MySQLChatRepository {
	return &MySQLChatRepository{db: db}
}

func (r *MySQLChatRepository) GetOrCreate(ctx context.Context, phone, name string) (*domain.Chat, error) {
	if name == "" {
		name = "+" + phone
	}

	query := `
		INSERT IGNORE INTO chats (phone, name, unread, last_message, last_ts)
		VALUES (?, ?, 0, '', 0)
	`

	if _, err := r.db.ExecContext(ctx, query, phone, name); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return r.getChat(ctx, phone)
}

func (r *MySQLChatRepository) getChat(ctx context.Context, phone string) (*domain.Chat, error) {
	query := `
		SELECT phone, name, unread, last_message, last_ts
		FROM chats
		WHERE phone = ?
	`

	var chat domain.Chat
	if err := r.db.GetContext(ctx, &chat, query, phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	return &chat, nil
}

func (r *MySQLChatRepository) Append(ctx context.Context, phone string, msg *domain.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	chatQuery := `
		INSERT IGNORE INTO chats (phone, name, unread, last_message, last_ts)
		VALUES (?, ?, 0, '', 0)
	`
	if _, err := tx.ExecContext(ctx, chatQuery, phone, "+"+phone); err != nil {
		return fmt.Errorf("failed to ensure chat: %w", err)
	}

	msgQuery := `
		INSERT INTO messages (id, chat_phone, provider_id, text, sender, ts, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	providerID := sql.NullString{String: msg.ProviderID, Valid: msg.ProviderID != ""}
	if _, err := tx.ExecContext(ctx, msgQuery, msg.ID, phone, providerID, msg.Text, msg.From, msg.Ts, msg.Status); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	lastQuery := `
		UPDATE chats
		SET last_message = ?, last_ts = ?
		WHERE phone = ?
	`
	if _, err := tx.ExecContext(ctx, lastQuery, msg.Text, msg.Ts, phone); err != nil {
		return fmt.Errorf("failed to update chat summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}

	return nil
}

func (r *MySQLChatRepository) IncrementUnread(ctx context.Context, phone string) error {
	query := `
		UPDATE chats
		SET unread = unread + 1
		WHERE phone = ?
	`

	if _, err := r.db.ExecContext(ctx, query, phone); err != nil {
		return fmt.Errorf("failed to increment unread: %w", err)
	}

	return nil
}

func (r *MySQLChatRepository) ResetUnread(ctx context.Context, phone string) (bool, error) {
	query := `
		UPDATE chats
		SET unread = 0
		WHERE phone = ?
	`

	result, err := r.db.ExecContext(ctx, query, phone)
	if err != nil {
		return false, fmt.Errorf("failed to reset unread: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (r *MySQLChatRepository) UpdateStatusByProviderID(
	ctx context.Context,
	phone, providerID string,
	status domain.MessageStatus,
) (bool, error) {
	query := `
		UPDATE messages
		SET status = ?
		WHERE chat_phone = ? AND provider_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, phone, providerID)
	if err != nil {
		return false, fmt.Errorf("failed to update message status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (r *MySQLChatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	query := `
		SELECT phone, name, unread, last_message, last_ts
		FROM chats
		ORDER BY created_at ASC
	`

	chats := []domain.Chat{}
	if err := r.db.SelectContext(ctx, &chats, query); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	return chats, nil
}

func (r *MySQLChatRepository) Messages(ctx context.Context, phone string) ([]domain.Message, error) {
	query := `
		SELECT id, COALESCE(provider_id, '') AS provider_id, text, sender, ts, status
		FROM messages
		WHERE chat_phone = ?
		ORDER BY seq ASC
	`

	messages := []domain.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, phone); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return messages, nil
}
