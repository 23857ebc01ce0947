package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for the per-conversation message log.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	// GetByID returns the message with participant profiles joined in,
	// or nil when absent.
	GetByID(ctx context.Context, messageID uuid.UUID) (*Message, error)
	// ListByConversation returns the full ordered history, creation time
	// ascending with insertion order breaking ties, participant profiles
	// joined in.
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
	// MarkRead flips read=true on every unread message in the
	// conversation addressed to the given receiver and reports how many
	// rows changed.
	MarkRead(ctx context.Context, conversationID string, receiverID uuid.UUID) (int64, error)
	// ListSummaries returns one summary per distinct conversation the
	// user participates in, most recent first.
	ListSummaries(ctx context.Context, userID uuid.UUID) ([]*ConversationSummary, error)
	// HasEnded reports whether any message of the conversation carries
	// the chat-ended flag.
	HasEnded(ctx context.Context, conversationID string) (bool, error)
	// SealByGig bulk-flags every message of the gig's conversation as
	// ended. Idempotent.
	SealByGig(ctx context.Context, gigID uuid.UUID) (int64, error)
}
