package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard/internal/domain/fault"
)

// Classified guard failures for the send path. ChatEnded and GigCompleted
// carry distinct codes so clients can flip into a sealed state without
// sniffing message text.
var (
	ErrChatEnded    = fault.WithCode(fault.KindConflict, "CHAT_ENDED", "this chat has ended because the gig is completed")
	ErrGigCompleted = fault.WithCode(fault.KindConflict, "GIG_COMPLETED", "this gig has been completed, the chat has ended")
)

// Participant carries the display fields of a message's sender or
// receiver.
type Participant struct {
	UserID       uuid.UUID `json:"userId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	ProfileImage string    `json:"profileImage"`
}

// Message is one entry in a conversation's append-only log. Immutable
// after creation except for the Read and ChatEnded flag flips.
type Message struct {
	ID             int64     `json:"id"`
	MessageID      uuid.UUID `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	GigID          uuid.UUID `json:"gigId"`
	SenderID       uuid.UUID `json:"senderId"`
	ReceiverID     uuid.UUID `json:"receiverId"`
	Body           string    `json:"message"`
	FileURL        *string   `json:"fileUrl,omitempty"`
	FileName       *string   `json:"fileName,omitempty"`
	FileType       *string   `json:"fileType,omitempty"`
	FileSize       *int64    `json:"fileSize,omitempty"`
	Read           bool      `json:"read"`
	ChatEnded      bool      `json:"chatEnded"`
	CreatedAt      time.Time `json:"createdAt"`

	// Populated on reads that join participant profiles.
	Sender   *Participant `json:"sender,omitempty"`
	Receiver *Participant `json:"receiver,omitempty"`
}

// HasAttachment reports whether the message carries a file.
func (m *Message) HasAttachment() bool {
	return m.FileURL != nil
}

// ConversationSummary is one row of a user's conversation listing.
type ConversationSummary struct {
	ConversationID string   `json:"conversationId"`
	GigID          uuid.UUID `json:"gigId"`
	GigTitle       string   `json:"gigTitle"`
	LastMessage    *Message `json:"lastMessage"`
	UnreadCount    int      `json:"unreadCount"`
}
