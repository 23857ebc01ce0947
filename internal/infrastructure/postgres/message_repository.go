package postgres

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/gigboard/internal/domain/chat"
)

// MessageRepository implements chat.Repository.
type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *chat.Message) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages
		(message_id, conversation_id, gig_id, sender_id, receiver_id, message, file_url, file_name, file_type, file_size, read, chat_ended, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, m.MessageID, m.ConversationID, m.GigID, m.SenderID, m.ReceiverID, m.Body, m.FileURL, m.FileName, m.FileType, m.FileSize, m.Read, m.ChatEnded, m.CreatedAt)
	return row.Scan(&m.ID)
}

func (r *MessageRepository) GetByID(ctx context.Context, messageID uuid.UUID) (*chat.Message, error) {
	row := r.pool.QueryRow(ctx, messageSelect+` WHERE m.message_id=$1`, messageID)
	return scanMessage(row)
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*chat.Message, error) {
	rows, err := r.pool.Query(ctx, messageSelect+`
		WHERE m.conversation_id=$1
		ORDER BY m.created_at ASC, m.id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []*chat.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, conversationID string, receiverID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages SET read=TRUE
		WHERE conversation_id=$1 AND receiver_id=$2 AND NOT read
	`, conversationID, receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MessageRepository) ListSummaries(ctx context.Context, userID uuid.UUID) ([]*chat.ConversationSummary, error) {
	// Latest message per conversation, then unread counts merged in a
	// second pass.
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (m.conversation_id)
			m.id, m.message_id, m.conversation_id, m.gig_id, m.sender_id, m.receiver_id, m.message,
			m.file_url, m.file_name, m.file_type, m.file_size, m.read, m.chat_ended, m.created_at,
			s.user_id, s.first_name, s.last_name, s.profile_image,
			rc.user_id, rc.first_name, rc.last_name, rc.profile_image,
			g.title
		FROM messages m
		JOIN users s ON s.user_id = m.sender_id
		JOIN users rc ON rc.user_id = m.receiver_id
		LEFT JOIN gigs g ON g.gig_id = m.gig_id
		WHERE m.sender_id=$1 OR m.receiver_id=$1
		ORDER BY m.conversation_id, m.created_at DESC, m.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*chat.ConversationSummary
	for rows.Next() {
		var m chat.Message
		var sender, receiver chat.Participant
		var gigTitle *string
		if err := rows.Scan(&m.ID, &m.MessageID, &m.ConversationID, &m.GigID, &m.SenderID, &m.ReceiverID, &m.Body,
			&m.FileURL, &m.FileName, &m.FileType, &m.FileSize, &m.Read, &m.ChatEnded, &m.CreatedAt,
			&sender.UserID, &sender.FirstName, &sender.LastName, &sender.ProfileImage,
			&receiver.UserID, &receiver.FirstName, &receiver.LastName, &receiver.ProfileImage,
			&gigTitle); err != nil {
			return nil, err
		}
		m.Sender = &sender
		m.Receiver = &receiver
		summary := &chat.ConversationSummary{
			ConversationID: m.ConversationID,
			GigID:          m.GigID,
			LastMessage:    &m,
		}
		if gigTitle != nil {
			summary.GigTitle = *gigTitle
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	counts, err := r.unreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		s.UnreadCount = counts[s.ConversationID]
	}

	// Most recent conversation first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

func (r *MessageRepository) unreadCounts(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id, COUNT(*)
		FROM messages
		WHERE receiver_id=$1 AND NOT read
		GROUP BY conversation_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (r *MessageRepository) HasEnded(ctx context.Context, conversationID string) (bool, error) {
	var ended bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM messages WHERE conversation_id=$1 AND chat_ended)
	`, conversationID).Scan(&ended)
	return ended, err
}

func (r *MessageRepository) SealByGig(ctx context.Context, gigID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages SET chat_ended=TRUE WHERE gig_id=$1 AND NOT chat_ended
	`, gigID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const messageSelect = `
	SELECT m.id, m.message_id, m.conversation_id, m.gig_id, m.sender_id, m.receiver_id, m.message,
		m.file_url, m.file_name, m.file_type, m.file_size, m.read, m.chat_ended, m.created_at,
		s.user_id, s.first_name, s.last_name, s.profile_image,
		rc.user_id, rc.first_name, rc.last_name, rc.profile_image
	FROM messages m
	JOIN users s ON s.user_id = m.sender_id
	JOIN users rc ON rc.user_id = m.receiver_id`

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	var sender, receiver chat.Participant
	if err := row.Scan(&m.ID, &m.MessageID, &m.ConversationID, &m.GigID, &m.SenderID, &m.ReceiverID, &m.Body,
		&m.FileURL, &m.FileName, &m.FileType, &m.FileSize, &m.Read, &m.ChatEnded, &m.CreatedAt,
		&sender.UserID, &sender.FirstName, &sender.LastName, &sender.ProfileImage,
		&receiver.UserID, &receiver.FirstName, &receiver.LastName, &receiver.ProfileImage); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.Sender = &sender
	m.Receiver = &receiver
	return &m, nil
}
