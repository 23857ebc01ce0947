package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appChat "github.com/gigboard/gigboard/internal/application/chat"
	appGig "github.com/gigboard/gigboard/internal/application/gig"
	appProduct "github.com/gigboard/gigboard/internal/application/product"
	appUser "github.com/gigboard/gigboard/internal/application/user"
	"github.com/gigboard/gigboard/internal/domain/fault"
	"github.com/gigboard/gigboard/internal/infrastructure/filestore"
	"github.com/gigboard/gigboard/internal/infrastructure/ws"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	userSvc    *appUser.Service
	gigSvc     *appGig.Service
	productSvc *appProduct.Service
	chatSvc    *appChat.Service
	hub        *ws.Hub
	files      *filestore.Store
	jwtSecret  []byte
	logger     zerolog.Logger
}

func NewServer(
	userSvc *appUser.Service,
	gigSvc *appGig.Service,
	productSvc *appProduct.Service,
	chatSvc *appChat.Service,
	hub *ws.Hub,
	files *filestore.Store,
	jwtSecret []byte,
	logger zerolog.Logger,
) *Server {
	return &Server{
		userSvc:    userSvc,
		gigSvc:     gigSvc,
		productSvc: productSvc,
		chatSvc:    chatSvc,
		hub:        hub,
		files:      files,
		jwtSecret:  jwtSecret,
		logger:     logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.health)

	if s.files != nil {
		fileServer := http.FileServer(http.Dir(s.files.Dir()))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))
	}

	// Public discovery surface.
	r.Get("/gigs", s.listGigs)
	r.Get("/gigs/{gigId}", s.getGig)
	r.Get("/products", s.listProducts)
	r.Get("/products/{productId}", s.getProduct)
	r.Get("/users/{userId}", s.getUser)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/auth/sync", s.syncUser)

		r.Get("/users/me", s.me)
		r.Patch("/users/me", s.updateMe)

		r.Post("/gigs", s.createGig)
		r.Get("/gigs/my/posted", s.myPostedGigs)
		r.Get("/gigs/my/accepted", s.myAcceptedGigs)
		r.Patch("/gigs/{gigId}", s.updateGig)
		r.Delete("/gigs/{gigId}", s.deleteGig)
		r.Post("/gigs/{gigId}/accept", s.acceptGig)
		r.Post("/gigs/{gigId}/submit", s.submitGig)
		r.Post("/gigs/{gigId}/approve", s.approveGig)
		r.Post("/gigs/{gigId}/request-revision", s.requestRevision)
		r.Post("/gigs/{gigId}/cancel", s.cancelGig)

		r.Post("/products", s.createProduct)
		r.Get("/products/my/listed", s.myListedProducts)
		r.Patch("/products/{productId}", s.updateProduct)
		r.Delete("/products/{productId}", s.deleteProduct)
		r.Post("/products/{productId}/bid", s.placeBid)
		r.Post("/products/{productId}/buy", s.buyProduct)

		r.Get("/chat/conversations", s.listConversations)
		r.Get("/chat/conversations/{conversationId}", s.conversationHistory)
		r.Post("/chat/send", s.sendMessage)
		r.Post("/chat/upload", s.uploadFile)

		r.Get("/ws", s.serveWS)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondFault maps a service error onto the wire envelope.
func respondFault(w http.ResponseWriter, err error) {
	var fe *fault.Error
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "internal error"
	if errors.As(err, &fe) {
		switch fe.Kind {
		case fault.KindNotFound:
			status = http.StatusNotFound
		case fault.KindForbidden:
			status = http.StatusForbidden
		case fault.KindConflict:
			status = http.StatusConflict
		case fault.KindInvalid:
			status = http.StatusBadRequest
		}
		code = fe.ErrorCode()
		message = fe.Message
	}
	respondError(w, status, code, message)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
