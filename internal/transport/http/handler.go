package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// Handler exposes the REST surface: answer submission, operator phase
// transitions, participant join, and the snapshot fallback.
type Handler struct {
	service *app.SubmissionService
	phases  *app.PhaseController
}

func NewHandler(service *app.SubmissionService, phases *app.PhaseController) *Handler {
	return &Handler{service: service, phases: phases}
}

// Register wires all REST routes plus the websocket feed onto the mux.
func (h *Handler) Register(mux *http.ServeMux, ws *WSHandler) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /submit-answer", h.SubmitAnswer)
	mux.HandleFunc("POST /quizzes/{quizID}/join", h.Join)
	mux.HandleFunc("POST /quizzes/{quizID}/start", h.Start)
	mux.HandleFunc("POST /quizzes/{quizID}/advance", h.Advance)
	mux.HandleFunc("POST /quizzes/{quizID}/end", h.End)
	mux.HandleFunc("GET /quizzes/{quizID}/snapshot", h.Snapshot)
	mux.HandleFunc("GET /quizzes/{quizID}/questions/{questionID}/answers", h.QuestionAnswers)
	mux.HandleFunc("GET /ws", ws.ServeWS)
}

type submitRequest struct {
	QuizID         string `json:"quizId"`
	ParticipantID  string `json:"participantId"`
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
}

type submitResponse struct {
	Success      bool `json:"success"`
	IsCorrect    bool `json:"isCorrect"`
	PointsEarned int  `json:"pointsEarned"`
	AnswerRank   *int `json:"answerRank"`
	TotalScore   int  `json:"totalScore"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.QuizID == "" || req.ParticipantID == "" || req.QuestionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quizId, participantId and questionId are required"})
		return
	}

	result, err := h.service.Submit(r.Context(), req.QuizID, req.ParticipantID, req.QuestionID, req.SelectedOption)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		IsCorrect:    result.IsCorrect,
		PointsEarned: result.PointsEarned,
		AnswerRank:   result.AnswerRank,
		TotalScore:   result.TotalScore,
	})
}

type joinRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}
	p, err := h.service.Join(r.Context(), r.PathValue("quizID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.phases.Start)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.phases.Advance)
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.phases.End)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, quizID string) (domain.Quiz, error)) {
	view, err := op(r.Context(), r.PathValue("quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) QuestionAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.service.QuestionAnswers(r.Context(), r.PathValue("quizID"), r.PathValue("questionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), r.PathValue("quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateSubmission):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuizNotLive), errors.Is(err, domain.ErrQuizEnded):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
