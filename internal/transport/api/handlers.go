package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/pkg/log"
)

const (
	maxBodyBytes = 64 << 10
	apology      = "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."
)

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response         string    `json:"response"`
	ResponseHTML     string    `json:"response_html"`
	ContextItemsUsed int       `json:"context_items_used"`
	AIPowered        bool      `json:"ai_powered"`
	IsThrottled      bool      `json:"is_throttled"`
	ModelUsed        string    `json:"model_used"`
	Timestamp        time.Time `json:"timestamp"`
}

type errorResponse struct {
	Response string `json:"response,omitempty"`
	Error    any    `json:"error"`
}

type historyResponse struct {
	History []core.Turn `json:"history"`
	Count   int         `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status            string             `json:"status"`
	Mode              string             `json:"mode"`
	WorkingModels     []string           `json:"working_models"`
	ThrottledModels   []string           `json:"throttled_models"`
	ServiceFunctional bool               `json:"service_functional"`
	Timestamp         time.Time          `json:"timestamp"`
	LastReset         *time.Time         `json:"last_reset,omitempty"`
	Attempts          []core.AttemptStat `json:"attempts,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromCtx(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("chat handler panicked")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Response: apology, Error: true})
		}
	}()

	var req chatRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			logger.Debug().Err(err).Msg("malformed chat body")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
			return
		}
	}

	user := strings.TrimSpace(req.UserID)
	if user == "" {
		user = strings.TrimSpace(r.Header.Get("User-Id"))
	}

	reply, err := s.assistant.Chat(ctx, user, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	case err != nil:
		logger.Error().Err(err).Msg("chat failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Response: apology, Error: true})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:         reply.Response,
		ResponseHTML:     reply.ResponseHTML,
		ContextItemsUsed: reply.ContextItemsUsed,
		AIPowered:        reply.AIPowered,
		IsThrottled:      reply.Throttled,
		ModelUsed:        reply.ModelUsed,
		Timestamp:        reply.Timestamp,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.assistant.History(chi.URLParam(r, "user_id"))
	writeJSON(w, http.StatusOK, historyResponse{History: history, Count: len(history)})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.assistant.Clear(chi.URLParam(r, "user_id"))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Chat history cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := s.health(r)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("health check failed")
		resp = healthResponse{
			Status:          "healthy",
			Mode:            chat.ModeError,
			WorkingModels:   []string{},
			ThrottledModels: []string{},
			Timestamp:       time.Now(),
		}
	}

	if s.stats != nil {
		stats, err := s.stats.AttemptStats(ctx, time.Now().Add(-statsWindow))
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("attempt stats unavailable")
		}
		resp.Attempts = stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// health converts a panic in the health computation into an error.
func (s *Server) health(r *http.Request) (resp healthResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("health panic: %v", rec)
		}
	}()

	h := s.assistant.Health(r.Context(), s.cfg.ThrottleCooldown)
	resp = healthResponse{
		Status:            "healthy",
		Mode:              h.Mode,
		WorkingModels:     h.WorkingModels,
		ThrottledModels:   h.ThrottledModels,
		ServiceFunctional: h.ServiceFunctional,
		Timestamp:         time.Now(),
	}
	if !h.LastReset.IsZero() {
		resp.LastReset = &h.LastReset
	}
	return resp, nil
}

func (s *Server) handleResetThrottle(w http.ResponseWriter, r *http.Request) {
	s.assistant.ResetThrottle()
	log.FromCtx(r.Context()).Info().Msg("throttle state reset")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Throttle state reset"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
