package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/omriShneor/serenity/internal/schedule"
	"github.com/omriShneor/serenity/internal/timeutil"
)

const defaultUserID = schedule.DefaultUser

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	status := map[string]interface{}{
		"status": "healthy",
		"gcal":   "disconnected",
		"llm":    "disabled",
	}
	if s.calendars != nil {
		status["gcal"] = "connected"
	}
	if s.llmReady {
		status["llm"] = "enabled"
	}

	respondJSON(w, http.StatusOK, status)
}

// Schedule API

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	maxEvents, err := queryInt(r, "max_events", schedule.DefaultMaxEvents)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxNotes, err := queryInt(r, "max_pages", schedule.DefaultMaxNotes)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched := s.schedule.Build(r.Context(), schedule.Request{
		Scope:     schedule.BreakScope(userID(r)),
		MaxEvents: maxEvents,
		MaxNotes:  maxNotes,
	})
	respondJSON(w, http.StatusOK, sched)
}

func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	if s.calendars == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not connected")
		return
	}

	calendars, err := s.calendars.ListCalendars(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list calendars")
		respondError(w, http.StatusBadGateway, "failed to list calendars")
		return
	}

	respondJSON(w, http.StatusOK, calendars)
}

// Notes API

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", schedule.DefaultMaxNotes)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	notes, err := s.db.ListRecentNotes(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list notes")
		respondError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

type createNoteRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	LastEditedTime string `json:"last_edited_time"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "title or content is required")
		return
	}

	var editedAt time.Time
	if req.LastEditedTime != "" {
		t, err := timeutil.ParseInstant(req.LastEditedTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid last_edited_time")
			return
		}
		editedAt = t
	}

	note, err := s.db.CreateNote(req.Title, req.Content, editedAt)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create note")
		respondError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return v, nil
}

func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("user_id")); id != "" {
		return id
	}
	return defaultUserID
}
