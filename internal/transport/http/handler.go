package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-exam-service/internal/app"
	"quiz-exam-service/internal/domain"
)

// Handler exposes the exam lifecycle and ranking use cases over REST.
type Handler struct {
	service *app.ExamService
}

func NewHandler(service *app.ExamService) *Handler {
	return &Handler{service: service}
}

// Register wires the routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quizzes/{id}/exam/start", h.startExam)
	mux.HandleFunc("POST /quizzes/{id}/exam/end", h.endExam)
	mux.HandleFunc("GET /quizzes/{id}/exam/status", h.examStatus)
	mux.HandleFunc("POST /quizzes/{id}/submit", h.submitQuiz)
	mux.HandleFunc("GET /quizzes/{id}/rankings", h.quizRankings)
	mux.HandleFunc("GET /quizzes/{id}/results", h.lectureResults)
	mux.HandleFunc("GET /classes/{id}/rankings", h.classRankings)
}

type startExamRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

type submitRequest struct {
	StudentID        string                 `json:"studentId"`
	Answers          []domain.Answer        `json:"answers"`
	TimeTakenSeconds int                    `json:"timeTakenSeconds"`
	AntiCheat        domain.AntiCheatSignal `json:"antiCheat"`
}

func (h *Handler) startExam(w http.ResponseWriter, r *http.Request) {
	var req startExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid start payload")
		return
	}
	if req.DurationMinutes <= 0 {
		writeBadRequest(w, "durationMinutes must be positive")
		return
	}
	window, err := h.service.StartExam(r.Context(), r.PathValue("id"), req.DurationMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}

func (h *Handler) endExam(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EndExam(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (h *Handler) examStatus(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetExamStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid submission payload")
		return
	}
	if req.StudentID == "" {
		writeBadRequest(w, "studentId is required")
		return
	}
	receipt, err := h.service.SubmitQuiz(r.Context(), r.PathValue("id"), req.StudentID, req.Answers, req.TimeTakenSeconds, req.AntiCheat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) quizRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.service.GetQuizRankings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

func (h *Handler) lectureResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.GetLectureResults(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) classRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.service.GetClassRankings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses.
// Lifecycle and idempotency violations are conflicts, business denials
// are forbidden, and everything else is a server fault.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrResultNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrExamAlreadyActive),
		errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrExamClosed),
		errors.Is(err, domain.ErrNotEnrolled),
		errors.Is(err, domain.ErrQuizInactive):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
