package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/gigboard/gigboard/internal/domain/chat"
	"github.com/gigboard/gigboard/internal/domain/fault"
	domainGig "github.com/gigboard/gigboard/internal/domain/gig"
	domainUser "github.com/gigboard/gigboard/internal/domain/user"
)

// Service handles conversation messaging between a gig's owner and its
// worker.
type Service struct {
	messages domain.Repository
	gigs     domainGig.Repository
	users    domainUser.Repository
	logger   zerolog.Logger
}

// NewService creates a chat service.
func NewService(messages domain.Repository, gigs domainGig.Repository, users domainUser.Repository, logger zerolog.Logger) *Service {
	return &Service{
		messages: messages,
		gigs:     gigs,
		users:    users,
		logger:   logger.With().Str("service", "chat").Logger(),
	}
}

// SendInput is a plain text message.
type SendInput struct {
	ReceiverID uuid.UUID
	GigID      uuid.UUID
	Body       string
}

// Attachment describes a stored file to share in a conversation.
type Attachment struct {
	ReceiverID uuid.UUID
	GigID      uuid.UUID
	Body       string
	FileURL    string
	FileName   string
	FileType   string
	FileSize   int64
}

// sendGuard loads the gig and rejects sends into a sealed conversation.
// A completed gig counts as sealed even when the bulk flag write was
// lost, which keeps approval and sealing safe to perform as two writes.
func (s *Service) sendGuard(ctx context.Context, gigID uuid.UUID, conversationID string) (*domainGig.Gig, error) {
	g, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fault.New(fault.KindNotFound, "gig not found")
	}
	if g.Status == domainGig.StatusCompleted {
		return nil, domain.ErrGigCompleted
	}
	ended, err := s.messages.HasEnded(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if ended {
		return nil, domain.ErrChatEnded
	}
	return g, nil
}

func (s *Service) checkReceiver(ctx context.Context, receiverID uuid.UUID) error {
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return err
	}
	if receiver == nil {
		return fault.New(fault.KindNotFound, "receiver not found")
	}
	return nil
}

// Send appends a text message to the conversation between sender and
// receiver about the gig, creating the conversation on first use.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*domain.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, fault.New(fault.KindInvalid, "message cannot be empty")
	}
	if input.ReceiverID == senderID {
		return nil, fault.New(fault.KindInvalid, "cannot message yourself")
	}
	if err := s.checkReceiver(ctx, input.ReceiverID); err != nil {
		return nil, err
	}

	conversationID := domain.DeriveConversationID(senderID, input.ReceiverID, input.GigID)
	if _, err := s.sendGuard(ctx, input.GigID, conversationID); err != nil {
		return nil, err
	}

	m := &domain.Message{
		MessageID:      uuid.New(),
		ConversationID: conversationID,
		GigID:          input.GigID,
		SenderID:       senderID,
		ReceiverID:     input.ReceiverID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("conversation_id", conversationID).
		Str("message_id", m.MessageID.String()).
		Msg("message sent")
	return s.enriched(ctx, m)
}

// AttachFile shares an uploaded file in the conversation. Only the
// worker assigned to the gig may upload.
func (s *Service) AttachFile(ctx context.Context, senderID uuid.UUID, input Attachment) (*domain.Message, error) {
	if err := s.checkReceiver(ctx, input.ReceiverID); err != nil {
		return nil, err
	}

	conversationID := domain.DeriveConversationID(senderID, input.ReceiverID, input.GigID)
	g, err := s.sendGuard(ctx, input.GigID, conversationID)
	if err != nil {
		return nil, err
	}
	if g.AcceptedBy == nil || *g.AcceptedBy != senderID {
		return nil, fault.New(fault.KindForbidden, "only the assigned worker can upload files for this gig")
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		body = fmt.Sprintf("Sent a file: %s", input.FileName)
	}
	m := &domain.Message{
		MessageID:      uuid.New(),
		ConversationID: conversationID,
		GigID:          input.GigID,
		SenderID:       senderID,
		ReceiverID:     input.ReceiverID,
		Body:           body,
		FileURL:        &input.FileURL,
		FileName:       &input.FileName,
		FileType:       &input.FileType,
		FileSize:       &input.FileSize,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("conversation_id", conversationID).
		Str("file_name", input.FileName).
		Msg("file shared")
	return s.enriched(ctx, m)
}

// History returns the conversation's full ordered log and marks every
// message addressed to the requester as read. If the gig completed but
// the bulk seal was lost, the flag is restored here.
func (s *Service) History(ctx context.Context, conversationID string, requesterID uuid.UUID) ([]*domain.Message, error) {
	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return msgs, nil
	}
	participant := false
	for _, m := range msgs {
		if m.SenderID == requesterID || m.ReceiverID == requesterID {
			participant = true
			break
		}
	}
	if !participant {
		return nil, fault.New(fault.KindForbidden, "not a participant of this conversation")
	}

	if n, err := s.messages.MarkRead(ctx, conversationID, requesterID); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("mark read failed")
	} else if n > 0 {
		for _, m := range msgs {
			if m.ReceiverID == requesterID {
				m.Read = true
			}
		}
	}

	if err := s.resealIfCompleted(ctx, conversationID, msgs); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("reseal check failed")
	}
	return msgs, nil
}

// resealIfCompleted restores the chat-ended flag on a conversation whose
// gig already completed but whose messages were never flagged.
func (s *Service) resealIfCompleted(ctx context.Context, conversationID string, msgs []*domain.Message) error {
	for _, m := range msgs {
		if m.ChatEnded {
			return nil
		}
	}
	g, err := s.gigs.GetByID(ctx, msgs[0].GigID)
	if err != nil {
		return err
	}
	if g == nil || g.Status != domainGig.StatusCompleted {
		return nil
	}
	if _, err := s.messages.SealByGig(ctx, g.GigID); err != nil {
		return err
	}
	for _, m := range msgs {
		m.ChatEnded = true
	}
	s.logger.Info().Str("conversation_id", conversationID).Msg("conversation resealed")
	return nil
}

// Conversations returns the caller's conversation list, most recent
// first, with unread counts.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	return s.messages.ListSummaries(ctx, userID)
}

// GetMessage returns a single message with participant profiles joined
// in.
func (s *Service) GetMessage(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fault.New(fault.KindNotFound, "message not found")
	}
	return m, nil
}

// enriched re-reads a freshly created message so callers get participant
// profiles without a second query path.
func (s *Service) enriched(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	full, err := s.messages.GetByID(ctx, m.MessageID)
	if err != nil || full == nil {
		// The write succeeded; fall back to the bare message rather
		// than failing the send.
		return m, nil
	}
	return full, nil
}
