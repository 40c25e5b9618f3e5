package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Manager *models.Manager `json:"manager"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	m, err := s.managers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, managers.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondServiceError(w, err)
		return
	}
	if !checkPassword(m.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.issueToken(m)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Manager: m})
}

type lobbyResponse struct {
	Managers []models.Manager `json:"managers"`
	AllReady bool             `json:"all_ready"`
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	ms, err := s.managers.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	allReady := len(ms) > 0
	for _, m := range ms {
		if m.Role == models.ManagerRoleManager && !m.IsReady {
			allReady = false
			break
		}
	}
	respondJSON(w, http.StatusOK, lobbyResponse{Managers: ms, AllReady: allReady})
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

func (s *Server) handleLobbyReady(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())

	var req readyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.managers.SetReady(r.Context(), m.ID, req.Ready); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ready": req.Ready})
}
