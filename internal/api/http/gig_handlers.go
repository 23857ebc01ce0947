package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	appGig "github.com/gigboard/gigboard/internal/application/gig"
	domain "github.com/gigboard/gigboard/internal/domain/gig"
)

type createGigRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Price       int64      `json:"price"`
	Category    string     `json:"category"`
	TimeLimit   *time.Time `json:"timeLimit"`
}

func (s *Server) createGig(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req createGigRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	g, err := s.gigSvc.Create(r.Context(), au.UserID, appGig.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		Category:    req.Category,
		TimeLimit:   req.TimeLimit,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (s *Server) listGigs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	gigs, err := s.gigSvc.ListActive(r.Context(), limit, offset)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gigsPayload(gigs))
}

func (s *Server) myPostedGigs(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	limit, offset := parsePagination(r)
	gigs, err := s.gigSvc.ListByOwner(r.Context(), au.UserID, limit, offset)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gigsPayload(gigs))
}

func (s *Server) myAcceptedGigs(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	limit, offset := parsePagination(r)
	gigs, err := s.gigSvc.ListAcceptedBy(r.Context(), au.UserID, limit, offset)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gigsPayload(gigs))
}

func (s *Server) getGig(w http.ResponseWriter, r *http.Request) {
	gigID, err := parseUUIDParam(r, "gigId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid gig id")
		return
	}
	g, err := s.gigSvc.Get(r.Context(), gigID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

type updateGigRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Images      []string   `json:"images"`
	Price       *int64     `json:"price"`
	Category    *string    `json:"category"`
	TimeLimit   *time.Time `json:"timeLimit"`
}

func (s *Server) updateGig(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	gigID, err := parseUUIDParam(r, "gigId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid gig id")
		return
	}
	var req updateGigRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	g, err := s.gigSvc.Update(r.Context(), gigID, au.UserID, appGig.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		Category:    req.Category,
		TimeLimit:   req.TimeLimit,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) deleteGig(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	gigID, err := parseUUIDParam(r, "gigId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid gig id")
		return
	}
	if err := s.gigSvc.Delete(r.Context(), gigID, au.UserID); err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// transition wraps the shared shape of the lifecycle endpoints.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(gigID, callerID uuid.UUID) (*domain.Gig, error)) {
	au := authUserFromContext(r.Context())
	gigID, err := parseUUIDParam(r, "gigId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid gig id")
		return
	}
	g, err := fn(gigID, au.UserID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) acceptGig(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(gigID, callerID uuid.UUID) (*domain.Gig, error) {
		return s.gigSvc.Accept(r.Context(), gigID, callerID)
	})
}

func (s *Server) submitGig(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(gigID, callerID uuid.UUID) (*domain.Gig, error) {
		return s.gigSvc.Submit(r.Context(), gigID, callerID)
	})
}

func (s *Server) approveGig(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(gigID, callerID uuid.UUID) (*domain.Gig, error) {
		return s.gigSvc.Approve(r.Context(), gigID, callerID)
	})
}

type revisionRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) requestRevision(w http.ResponseWriter, r *http.Request) {
	var req revisionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	s.transition(w, r, func(gigID, callerID uuid.UUID) (*domain.Gig, error) {
		return s.gigSvc.RequestRevision(r.Context(), gigID, callerID, req.Reason)
	})
}

func (s *Server) cancelGig(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(gigID, callerID uuid.UUID) (*domain.Gig, error) {
		return s.gigSvc.Cancel(r.Context(), gigID, callerID)
	})
}

func gigsPayload(gigs []*domain.Gig) []*domain.Gig {
	if gigs == nil {
		return []*domain.Gig{}
	}
	return gigs
}
