package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// handleSuggestionFeed serves the candidate feed the client-side
// suggestion engine caches: the user's aggregated exercise history merged
// with the shared catalog. Idempotent and side-effect-free.
func (s *Server) handleSuggestionFeed(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	exercises, err := s.db.SuggestionFeed(r.Context(), uid)
	if err != nil {
		s.log.Error("suggestion feed failed", "user", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exercises":  exercises,
		"fetched_at": time.Now().UTC(),
		"count":      len(exercises),
	})
}

// logExerciseRequest is the POST body for recording a logged exercise.
type logExerciseRequest struct {
	Name                string  `json:"name"`
	Weight              *string `json:"weight,omitempty"`
	Sets                *int    `json:"sets,omitempty"`
	Reps                *int    `json:"reps,omitempty"`
	EffectiveRepsMax    *int    `json:"effective_reps_max,omitempty"`
	EffectiveRepsTarget *int    `json:"effective_reps_target,omitempty"`
	UseEffectiveReps    bool    `json:"use_effective_reps,omitempty"`
}

func (s *Server) handleLogExercise(w http.ResponseWriter, r *http.Request) {
	var req logExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Weight != nil && !validWeight(*req.Weight) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be numeric or \"BW\""})
		return
	}

	id, err := s.db.InsertExerciseLog(r.Context(), storage.ExerciseLogRow{
		UserID:              userIDFromContext(r),
		Name:                req.Name,
		Weight:              req.Weight,
		Sets:                req.Sets,
		Reps:                req.Reps,
		EffectiveRepsMax:    req.EffectiveRepsMax,
		EffectiveRepsTarget: req.EffectiveRepsTarget,
		UseEffectiveReps:    req.UseEffectiveReps,
	})
	if err != nil {
		s.log.Error("exercise log insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": "logged"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validWeight accepts a numeric-as-text load or the bodyweight sentinel.
func validWeight(weight string) bool {
	if weight == models.BodyweightSentinel {
		return true
	}
	_, err := strconv.ParseFloat(weight, 64)
	return err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
