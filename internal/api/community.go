package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecoplus-hub/ecoplus/internal/app/community"
)

// ─── Social feed ────────────────────────────────────────────────────────────

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.svc.Social.CreatePost(r.Context(), userID(r.Context()), req.Content, req.Images)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.svc.Social.Feed(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.svc.Social.UserPosts(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := s.svc.Social.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.svc.Social.Comment(r.Context(), chi.URLParam(r, "id"), userID(r.Context()), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reactions, err := s.svc.Social.React(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), userID(r.Context()), req.Type)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reactions)
}

// ─── Events ─────────────────────────────────────────────────────────────────

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := eventDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.svc.Events.Create(r.Context(), userID(r.Context()), community.CreateRequest{
		Name:               req.Name,
		Date:               date,
		Time:               req.Time,
		Location:           req.Location,
		RequiredVolunteers: req.RequiredVolunteers,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleJoinEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Events.Join(r.Context(), chi.URLParam(r, "id"), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.Notifications.List(r.Context(), userID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Notifications.MarkAllRead(r.Context(), userID(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "All marked as read")
}

// ─── Real-time ──────────────────────────────────────────────────────────────

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.svc.Hub == nil {
		writeError(w, http.StatusNotFound, "real-time channel disabled")
		return
	}
	s.svc.Hub.ServeWS(w, r, userID(r.Context()))
}
