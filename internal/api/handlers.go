package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/app/journey"
)

// ─── Auth ───────────────────────────────────────────────────────────────────

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := s.svc.Accounts.Register(r.Context(), req.FullName, req.MobileNo, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.svc.Tokens.Issue(u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    summarize(u),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := s.svc.Accounts.Login(r.Context(), req.MobileNo, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.svc.Tokens.Issue(u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    summarize(u),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Accounts.Get(r.Context(), userID(r.Context()))
	if err != nil {
		// A valid token for a deleted account is still a failed session.
		writeError(w, http.StatusUnauthorized, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, summarize(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	writeMessage(w, "Logged out successfully")
}

// ─── Quiz ───────────────────────────────────────────────────────────────────

func (s *Server) handleQuizRandom(w http.ResponseWriter, r *http.Request) {
	qs, err := s.svc.Quiz.Random(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (s *Server) handleQuizVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing questionId or selectedOptionIndex")
		return
	}
	res, err := s.svc.Quiz.Verify(r.Context(), userID(r.Context()), req.QuestionID, *req.SelectedOptionIndex)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Activity ───────────────────────────────────────────────────────────────

func (s *Server) handleActivityLog(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Activity.Log(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		engagement.LogResult
	}{"Activity logged", res})
}

func (s *Server) handleActivityData(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Activity.Data(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ─── Journeys ───────────────────────────────────────────────────────────────

func (s *Server) handleJourneyLog(w http.ResponseWriter, r *http.Request) {
	var req journeyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	j, err := s.svc.Journeys.Log(r.Context(), userID(r.Context()), journey.LogRequest{
		TransportType:  req.TransportType,
		Distance:       req.Distance,
		FuelEfficiency: req.FuelEfficiency,
		Emissions:      req.Emissions,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) handleJourneyList(w http.ResponseWriter, r *http.Request) {
	js, err := s.svc.Journeys.List(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, js)
}

func (s *Server) handleJourneyStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Journeys.Stats(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ─── Users ──────────────────────────────────────────────────────────────────

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Accounts.Leaderboard(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Accounts.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Accounts.Profile(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.Accounts.SetAvatar(r.Context(), userID(r.Context()), req.Avatar); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Avatar updated", "avatar": req.Avatar})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engagement.Catalog())
}
