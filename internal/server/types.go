package server

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agbru/bigcalc/internal/history"
)

// EvaluateRequest is the body of POST /api/v1/evaluate. Either Expression
// or the three structured members must be set, not both.
type EvaluateRequest struct {
	Expression string `json:"expression" validate:"required_without_all=Left Op Right,excluded_with=Left"`
	Left       string `json:"left" validate:"required_without=Expression"`
	Op         string `json:"op" validate:"required_without=Expression"`
	Right      string `json:"right" validate:"required_without=Expression"`
}

// Line returns the request as an expression line.
func (r EvaluateRequest) Line() string {
	if r.Expression != "" {
		return r.Expression
	}
	return strings.Join([]string{r.Left, r.Op, r.Right}, " ")
}

// EvaluateResponse is the success body of POST /api/v1/evaluate.
// Remainder is set for "/" only.
type EvaluateResponse struct {
	Expression string  `json:"expression"`
	Result     string  `json:"result"`
	Remainder  *string `json:"remainder,omitempty"`
	Duration   string  `json:"duration"`
}

// HistoryResponse is the body of GET /api/v1/history.
type HistoryResponse struct {
	Records []history.Record `json:"records"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "excluded_with":
			msgs = append(msgs, "use either expression or left/op/right, not both")
		case "required_without_all":
			msgs = append(msgs, "expression or left/op/right is required")
		default:
			msgs = append(msgs, field+" is required")
		}
	}
	return strings.Join(msgs, "; ")
}
