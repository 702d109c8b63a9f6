package httpserver

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/shopguard/internal/errs"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	u, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_request")
		case errors.Is(err, errs.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "already_exists")
		default:
			s.log.Error("register", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"data":   map[string]string{"id": u.ID.String(), "email": u.Email},
	})
}

type authentication struct {
	Token     string    `json:"token"`
	Email     string    `json:"umail"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	tok, u, err := s.auth.Login(r.Context(), req.Email, req.Password, s.clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
		case errors.Is(err, errs.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited")
		default:
			s.log.Error("login", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]authentication{
		"authentication": {Token: tok.AccessToken, Email: u.Email, ExpiresAt: tok.ExpiresAt.UTC()},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(tokenFromCtx(r.Context()))
	if id, ok := UserIDFromCtx(r.Context()); ok {
		s.log.Info("logout", zap.Stringer("user", id))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleListUsers serves the administrative listing. Credentials are masked
// by the projection; a token that fails verification degrades its entry.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	entries, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.log.Error("list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": entries})
}

type challengeView struct {
	Key      string     `json:"key"`
	Name     string     `json:"name"`
	Solved   bool       `json:"solved"`
	SolvedAt *time.Time `json:"solvedAt"`
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	cs, err := s.challenges.List(r.Context())
	if err != nil {
		s.log.Error("list challenges", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	out := make([]challengeView, 0, len(cs))
	for _, c := range cs {
		out = append(out, challengeView{Key: c.Key, Name: c.Name, Solved: c.Solved, SolvedAt: c.SolvedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": out})
}
