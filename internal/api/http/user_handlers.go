package httpapi

import (
	"net/http"

	appUser "github.com/gigboard/gigboard/internal/application/user"
)

type syncUserRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	ProfileImage string `json:"profileImage"`
}

func (s *Server) syncUser(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req syncUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	u, isNew, err := s.userSvc.Sync(r.Context(), au.ExternalID, appUser.SyncInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	respondJSON(w, status, u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	u, err := s.userSvc.GetByID(r.Context(), au.UserID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type updateUserRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	ProfileImage *string `json:"profileImage"`
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	au := authUserFromContext(r.Context())
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid request body")
		return
	}
	u, err := s.userSvc.UpdateProfile(r.Context(), au.UserID, appUser.UpdateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user id")
		return
	}
	u, err := s.userSvc.GetByID(r.Context(), userID)
	if err != nil {
		respondFault(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u.PublicProfile())
}
