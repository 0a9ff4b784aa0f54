package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/agbru/bigcalc/internal/errors"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "too_large",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, "validation", "invalid JSON body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "validation", validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	ev, err := s.evaluator.Evaluate(ctx, req.Line())
	if err != nil {
		s.writeErrorResponse(w, statusForError(err), apperrors.Kind(err), err.Error())
		return
	}

	resp := EvaluateResponse{
		Expression: ev.Expression.String(),
		Result:     ev.Result.String(),
		Duration:   ev.Duration.String(),
	}
	if ev.Result.Remainder != nil {
		rem := ev.Result.Remainder.String()
		resp.Remainder = &rem
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeErrorResponse(w, http.StatusNotFound, "config", "history is disabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			err = validate.Var(n, "min=1,max="+strconv.Itoa(maxHistoryLimit))
		}
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, "validation",
				"limit must be an integer between 1 and "+strconv.Itoa(maxHistoryLimit))
			return
		}
		limit = n
	}

	records, err := s.history.Recent(limit)
	if err != nil {
		s.logger.Error("reading history", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, "internal", "history unavailable")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, HistoryResponse{Records: records})
}

// statusForError maps an evaluation error to an HTTP status.
func statusForError(err error) int {
	switch {
	case apperrors.IsContextError(err):
		if errors.Is(err, context.Canceled) {
			return http.StatusServiceUnavailable
		}
		return http.StatusGatewayTimeout
	case apperrors.IsParseError(err):
		return http.StatusBadRequest
	case apperrors.IsArithmeticError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, kind, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{Error: message, Kind: kind})
}
