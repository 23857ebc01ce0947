package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	appChat "github.com/gigboard/gigboard/internal/application/chat"
	"github.com/gigboard/gigboard/internal/domain/fault"
	"github.com/gigboard/gigboard/internal/infrastructure/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades the connection and runs the realtime message loop for
// the authenticated user.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(au.UserID, conn, s.logger)
	s.hub.Register(client)
	go client.WritePump()
	client.Prepare()

	defer s.hub.Unregister(client)
	// The request context carries the router's timeout, which must not
	// bound the lifetime of the socket.
	ctx := context.Background()
	for {
		ev, err := client.ReadEvent()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Debug().Err(err).Str("user_id", au.UserID.String()).Msg("websocket read error")
			}
			return
		}
		s.handleSocketEvent(ctx, client, ev)
	}
}

type socketSendPayload struct {
	ReceiverID uuid.UUID `json:"receiverId"`
	GigID      uuid.UUID `json:"gigId"`
	Message    string    `json:"message"`
}

type socketFilePayload struct {
	MessageID uuid.UUID `json:"messageId"`
}

type socketError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleSocketEvent(ctx context.Context, client *ws.Client, ev ws.Event) {
	switch ev.Event {
	case "join":
		// Delivery is keyed by user, not by room; joining is implicit.
	case "send_message":
		var payload socketSendPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			s.sendSocketError(client, "INVALID_PARAM", "invalid send_message payload")
			return
		}
		m, err := s.chatSvc.Send(ctx, client.UserID, appChat.SendInput{
			ReceiverID: payload.ReceiverID,
			GigID:      payload.GigID,
			Body:       payload.Message,
		})
		if err != nil {
			s.sendSocketFault(client, err)
			return
		}
		if ack, err := ws.NewEvent("message_sent", m); err == nil {
			client.Enqueue(ack)
		}
		s.pushToReceiver("receive_message", m)
	case "file_uploaded":
		// The client announces a finished REST upload so the stored
		// attachment reaches the counterparty's live socket.
		var payload socketFilePayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			s.sendSocketError(client, "INVALID_PARAM", "invalid file_uploaded payload")
			return
		}
		m, err := s.chatSvc.GetMessage(ctx, payload.MessageID)
		if err != nil {
			s.sendSocketFault(client, err)
			return
		}
		if m.SenderID != client.UserID {
			s.sendSocketError(client, "FORBIDDEN", "not the sender of this message")
			return
		}
		s.pushToReceiver("receive_message", m)
	default:
		s.logger.Debug().Str("event", ev.Event).Msg("ignoring unknown socket event")
	}
}

func (s *Server) sendSocketError(client *ws.Client, code, message string) {
	ev, err := ws.NewEvent("message_error", socketError{Code: code, Error: message})
	if err != nil {
		return
	}
	client.Enqueue(ev)
}

func (s *Server) sendSocketFault(client *ws.Client, err error) {
	var fe *fault.Error
	code := "INTERNAL_ERROR"
	message := "internal error"
	if errors.As(err, &fe) {
		code = fe.ErrorCode()
		message = fe.Message
	}
	s.sendSocketError(client, code, message)
}
