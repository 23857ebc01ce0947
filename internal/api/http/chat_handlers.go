package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appChat "github.com/gigboard/gigboard/internal/application/chat"
	domain "github.com/gigboard/gigboard/internal/domain/chat"
	"github.com/gigboard/gigboard/internal/infrastructure/ws"
)

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	summaries, err := s.chatSvc.Conversations(r.Context(), au.UserID)
	if err != nil {
		respondFault(w, err)
		return
	}
	if summaries == nil {
		summaries = []*domain.ConversationSummary{}
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) conversationHistory(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationId")
	msgs, err := s.chatSvc.History(r.Context(), conversationID, au.UserID)
	if err != nil {
		respondFault(w, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	GigID      uuid.UUID `json:"gigId"`
	Message    string    `json:"message"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	m, err := s.chatSvc.Send(r.Context(), au.UserID, appChat.SendInput{
		ReceiverID: req.ReceiverID,
		GigID:      req.GigID,
		Body:       req.Message,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	s.pushToReceiver("receive_message", m)
	respondJSON(w, http.StatusCreated, m)
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid multipart form")
		return
	}
	receiverID, err := uuid.Parse(r.FormValue("receiverId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid receiver id")
		return
	}
	gigID, err := uuid.Parse(r.FormValue("gigId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid gig id")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "file is required")
		return
	}
	defer file.Close()

	saved, err := s.files.Save(header.Filename, file)
	if err != nil {
		respondFault(w, err)
		return
	}
	m, err := s.chatSvc.AttachFile(r.Context(), au.UserID, appChat.Attachment{
		ReceiverID: receiverID,
		GigID:      gigID,
		Body:       r.FormValue("message"),
		FileURL:    saved.URL,
		FileName:   header.Filename,
		FileType:   header.Header.Get("Content-Type"),
		FileSize:   saved.Size,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	// The receiving client renders attachments through the same event
	// as text messages.
	s.pushToReceiver("receive_message", m)
	respondJSON(w, http.StatusCreated, m)
}

// pushToReceiver forwards a stored message to the receiver's live socket
// if they are connected.
func (s *Server) pushToReceiver(event string, m *domain.Message) {
	ev, err := ws.NewEvent(event, m)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode socket event")
		return
	}
	s.hub.Send(m.ReceiverID, ev)
}
