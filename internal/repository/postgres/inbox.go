package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
)

type inboxRepository struct {
	db *sql.DB
}

func NewInboxRepository(db *sql.DB) repository.InboxRepository {
	return &inboxRepository{db: db}
}

const conversationColumns = `id, company_id, external_id, participant_id, participant_handle, participant_name, last_message, last_message_at, unread_count`

func scanConversation(row interface{ Scan(...any) error }) (*domain.InstagramConversation, error) {
	c := &domain.InstagramConversation{}
	var last sql.NullTime
	if err := row.Scan(&c.ID, &c.CompanyID, &c.ExternalID, &c.ParticipantID, &c.ParticipantHandle, &c.ParticipantName,
		&c.LastMessage, &last, &c.UnreadCount); err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time
		c.LastMessageAt = &t
	}
	return c, nil
}

// UpsertConversation keeps participant fields fresh and never resets the unread counter.
func (r *inboxRepository) UpsertConversation(ctx context.Context, c *domain.InstagramConversation) error {
	query := `INSERT INTO instagram_conversations (company_id, external_id, participant_id, participant_handle, participant_name, last_message, last_message_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (company_id, external_id) DO UPDATE
	          SET participant_id = COALESCE(NULLIF(EXCLUDED.participant_id, ''), instagram_conversations.participant_id),
	              participant_handle = COALESCE(NULLIF(EXCLUDED.participant_handle, ''), instagram_conversations.participant_handle),
	              participant_name = COALESCE(NULLIF(EXCLUDED.participant_name, ''), instagram_conversations.participant_name),
	              last_message_at = GREATEST(EXCLUDED.last_message_at, instagram_conversations.last_message_at)
	          RETURNING id, unread_count`
	return r.db.QueryRowContext(ctx, query, c.CompanyID, c.ExternalID, c.ParticipantID, c.ParticipantHandle, c.ParticipantName,
		c.LastMessage, c.LastMessageAt).Scan(&c.ID, &c.UnreadCount)
}

func (r *inboxRepository) GetConversation(ctx context.Context, id int32) (*domain.InstagramConversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM instagram_conversations WHERE id = $1`
	return scanConversation(r.db.QueryRowContext(ctx, query, id))
}

func (r *inboxRepository) ListConversations(ctx context.Context, companyID int32) ([]domain.InstagramConversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM instagram_conversations WHERE company_id = $1
	          ORDER BY last_message_at DESC NULLS LAST, id DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.InstagramConversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

func (r *inboxRepository) InsertMessage(ctx context.Context, m *domain.InstagramMessage) (bool, error) {
	query := `INSERT INTO instagram_messages (conversation_id, external_id, direction, body, sent_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (external_id) DO NOTHING RETURNING id`
	err := r.db.QueryRowContext(ctx, query, m.ConversationID, m.ExternalID, m.Direction, m.Body, m.SentAt).Scan(&m.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *inboxRepository) ListMessages(ctx context.Context, conversationID int32) ([]domain.InstagramMessage, error) {
	query := `SELECT id, conversation_id, external_id, direction, body, sent_at FROM instagram_messages
	          WHERE conversation_id = $1 ORDER BY sent_at, id`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.InstagramMessage
	for rows.Next() {
		var m domain.InstagramMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.ExternalID, &m.Direction, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *inboxRepository) MarkRead(ctx context.Context, conversationID int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE instagram_conversations SET unread_count = 0 WHERE id = $1`, conversationID)
	return err
}

func (r *inboxRepository) TouchConversation(ctx context.Context, conversationID int32, lastMessage string, at time.Time, incrementUnread bool) error {
	query := `UPDATE instagram_conversations
	          SET last_message = $1, last_message_at = $2,
	              unread_count = unread_count + CASE WHEN $3 THEN 1 ELSE 0 END
	          WHERE id = $4 AND (last_message_at IS NULL OR last_message_at <= $2)`
	_, err := r.db.ExecContext(ctx, query, lastMessage, at, incrementUnread, conversationID)
	return err
}
