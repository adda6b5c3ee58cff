package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"brainchild-quiz-service/internal/app"
	"brainchild-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// PlayHandlers exposes the play use cases over JSON.
type PlayHandlers struct {
	service *app.PlayService
}

func NewPlayHandlers(service *app.PlayService) *PlayHandlers {
	return &PlayHandlers{service: service}
}

type startedResponse struct {
	SessionID      string              `json:"sessionId"`
	TotalQuestions int                 `json:"totalQuestions"`
	Question       domain.QuestionView `json:"question"`
}

type answerRequest struct {
	QuestionIndex *int   `json:"questionIndex"`
	ChosenLetter  string `json:"chosenLetter"`
}

type resultResponse struct {
	domain.QuizResult
	Percentage  float64 `json:"percentage"`
	Grade       string  `json:"grade"`
	TimeDisplay string  `json:"timeDisplay"`
}

func newStartedResponse(session domain.PlaySession) startedResponse {
	return startedResponse{
		SessionID:      session.ID,
		TotalQuestions: len(session.Questions),
		Question:       session.ViewAt(0),
	}
}

func newResultResponse(result domain.QuizResult) resultResponse {
	return resultResponse{
		QuizResult:  result,
		Percentage:  result.Percentage(),
		Grade:       result.GradeLetter(),
		TimeDisplay: result.TimeDisplay(),
	}
}

func (h *PlayHandlers) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Start(r.Context(), PlayerFrom(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStartedResponse(session))
}

func (h *PlayHandlers) Current(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Current(r.Context(), PlayerFrom(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PlayHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.QuestionIndex == nil {
		writeErr(w, http.StatusBadRequest, "questionIndex is required")
		return
	}
	grade, err := h.service.Submit(r.Context(), PlayerFrom(r.Context()), chi.URLParam(r, "quizID"), *req.QuestionIndex, req.ChosenLetter)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grade)
}

func (h *PlayHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Finish(r.Context(), PlayerFrom(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(result))
}

func (h *PlayHandlers) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(r.Context(), PlayerFrom(r.Context()), chi.URLParam(r, "quizID")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayHandlers) Result(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "resultID"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid result id")
		return
	}
	result, err := h.service.Result(r.Context(), PlayerFrom(r.Context()), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(result))
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuizNotPlayable), errors.Is(err, domain.ErrNotResultOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStaleQuestionIndex),
		errors.Is(err, domain.ErrIncompleteSession),
		errors.Is(err, domain.ErrSessionComplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("play request failed: %v", err)
		msg = http.StatusText(status)
	}
	writeErr(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
