package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/store"
)

const maxLeaderboardLimit = 100

type createGameRequest struct {
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type gameResponse struct {
	ID       string        `json:"id"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type flipRequest struct {
	CardID string `json:"card_id" validate:"required"`
}

type flipResponse struct {
	Accepted bool          `json:"accepted"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type createResultRequest struct {
	Name       string `json:"name" validate:"required,max=32"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Policy     string `json:"policy" validate:"omitempty,max=32"`
	Score      int    `json:"score" validate:"gte=0"`
	Moves      int    `json:"moves" validate:"gte=0"`
	DurationMS int64  `json:"duration_ms" validate:"gte=0"`
}

type resultResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Difficulty  string    `json:"difficulty"`
	Policy      string    `json:"policy,omitempty"`
	Score       int       `json:"score"`
	Moves       int       `json:"moves"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

func toResultResponse(r store.Result) resultResponse {
	return resultResponse{
		ID:          r.ID,
		Name:        r.Player,
		Difficulty:  r.Difficulty,
		Policy:      r.Policy,
		Score:       r.Score,
		Moves:       r.Moves,
		DurationMS:  r.Duration.Milliseconds(),
		CompletedAt: r.CompletedAt,
	}
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	d := s.difficulty
	if req.Difficulty != "" {
		d = deck.Difficulty(req.Difficulty)
	}

	sess := s.sessions.Create(d)
	zerolog.Ctx(r.Context()).Debug().Str("session", sess.ID).Str("difficulty", string(d)).Msg("game created")
	writeJSON(w, http.StatusCreated, gameResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot().Masked()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot().Masked()})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req flipRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	accepted := sess.Engine.Flip(req.CardID)
	writeJSON(w, http.StatusOK, flipResponse{Accepted: accepted, Snapshot: sess.Engine.Snapshot().Masked()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req createGameRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	d := sess.Engine.Difficulty()
	if req.Difficulty != "" {
		d = deck.Difficulty(req.Difficulty)
	}
	sess.Engine.Reset(d)
	writeJSON(w, http.StatusOK, gameResponse{ID: sess.ID, Snapshot: sess.Engine.Snapshot().Masked()})
}

func (s *Server) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results are not being recorded")
		return
	}
	var req createResultRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	res := &store.Result{
		Player:      req.Name,
		Difficulty:  req.Difficulty,
		Policy:      req.Policy,
		Score:       req.Score,
		Moves:       req.Moves,
		Duration:    time.Duration(req.DurationMS) * time.Millisecond,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.results.Append(r.Context(), res); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("append result")
		writeError(w, http.StatusInternalServerError, "could not save result")
		return
	}
	writeJSON(w, http.StatusCreated, toResultResponse(*res))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		writeError(w, http.StatusServiceUnavailable, "results are not being recorded")
		return
	}

	difficulty := r.URL.Query().Get("difficulty")
	if difficulty == "" {
		difficulty = "all"
	}
	if difficulty != "all" {
		if _, err := deck.ParseDifficulty(difficulty); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	limit := store.DefaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLeaderboardLimit))
			return
		}
		limit = n
	}

	results, err := s.results.Top(r.Context(), difficulty, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load leaderboard")
		writeError(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}
	out := make([]resultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toResultResponse(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"difficulty": difficulty, "results": out})
}

// decode reads a JSON body into v and validates it. An empty body is
// accepted when optional is set. On failure the error response has been
// written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return false
		}
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "gte":
			return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
