package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/database"
	"github.com/omriShneor/serenity/internal/schedule"
	"github.com/omriShneor/serenity/internal/timeutil"
)

const defaultBreakDuration = 10

func (s *Server) handleListBreaks(w http.ResponseWriter, r *http.Request) {
	maxEvents, err := queryInt(r, "max_events", schedule.DefaultMaxEvents)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched := s.schedule.Build(r.Context(), schedule.Request{
		Scope:     schedule.BreakScope(userID(r)),
		MaxEvents: maxEvents,
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{"breaks": sched.Breaks})
}

func (s *Server) handleBreakTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"break_types": breaks.AllBreakTypes()})
}

func (s *Server) handleBreakSuggestions(w http.ResponseWriter, r *http.Request) {
	hint := r.URL.Query().Get("context")
	suggestions := breaks.SuggestActivities(hint)

	types := make([]breaks.BreakType, 0, len(suggestions))
	for _, a := range suggestions {
		types = append(types, breaks.LookupBreakType(a))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"context":     hint,
		"suggestions": suggestions,
		"break_types": types,
	})
}

// breakInput is the editable shape of a break in request bodies.
type breakInput struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Duration    *int   `json:"duration"`
	Activity    string `json:"activity"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Custom      bool   `json:"custom"`
}

func (in breakInput) toCustomBreak() (database.CustomBreak, error) {
	t, err := timeutil.ParseInstant(in.Time)
	if err != nil {
		return database.CustomBreak{}, fmt.Errorf("invalid time %q", in.Time)
	}
	if strings.TrimSpace(in.Activity) == "" {
		return database.CustomBreak{}, fmt.Errorf("activity is required")
	}
	duration := defaultBreakDuration
	if in.Duration != nil {
		duration = *in.Duration
	}
	return database.CustomBreak{
		ID:              in.ID,
		Time:            t,
		DurationMinutes: duration,
		Activity:        in.Activity,
		Reason:          in.Reason,
		Description:     in.Description,
		Icon:            in.Icon,
		Custom:          in.Custom,
	}, nil
}

type customizeRequest struct {
	Breaks []breakInput `json:"breaks"`
	UserID string       `json:"user_id"`
}

func (s *Server) handleCustomizeBreaks(w http.ResponseWriter, r *http.Request) {
	var req customizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	items := make([]database.CustomBreak, 0, len(req.Breaks))
	for i, in := range req.Breaks {
		b, err := in.toCustomBreak()
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("break %d: %v", i, err))
			return
		}
		items = append(items, b)
	}

	saved, err := s.db.ReplaceCustomBreaks(bodyUserID(req.UserID), items)
	if errors.Is(err, database.ErrInvalidDuration) || errors.Is(err, database.ErrDuplicateBreak) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to save break customizations")
		respondError(w, http.StatusInternalServerError, "failed to save breaks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Breaks customized successfully",
		"breaks":  saved,
	})
}

func (s *Server) handleListCustomizations(w http.ResponseWriter, r *http.Request) {
	items, err := s.db.ListCustomBreaks(userID(r))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list break customizations")
		respondError(w, http.StatusInternalServerError, "failed to list breaks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"breaks": items})
}

type addBreakRequest struct {
	breakInput
	UserID string `json:"user_id"`
}

func (s *Server) handleAddBreak(w http.ResponseWriter, r *http.Request) {
	var req addBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	b, err := req.breakInput.toCustomBreak()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := s.db.AddCustomBreak(bodyUserID(req.UserID), b)
	if errors.Is(err, database.ErrInvalidDuration) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to add break")
		respondError(w, http.StatusInternalServerError, "failed to add break")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Break added successfully",
		"break":   added,
	})
}

func (s *Server) handleDeleteBreak(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.db.DeleteCustomBreak(userID(r), id)
	if errors.Is(err, database.ErrBreakNotFound) {
		respondError(w, http.StatusNotFound, "break not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("break_id", id).Msg("failed to delete break")
		respondError(w, http.StatusInternalServerError, "failed to delete break")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Break deleted successfully",
	})
}

func (s *Server) handleClearBreakCache(w http.ResponseWriter, r *http.Request) {
	s.schedule.ClearCache()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Break cache cleared successfully",
	})
}

func bodyUserID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return defaultUserID
}
