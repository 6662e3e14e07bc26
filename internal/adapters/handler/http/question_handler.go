package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

// CantVoteMessage is carried to the index when a question is not open.
const CantVoteMessage = "This question can't vote"

type QuestionHandler struct {
	service ports.QuestionService
	now     func() time.Time
}

func NewQuestionHandler(service ports.QuestionService, now func() time.Time) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		now:     now,
	}
}

type questionSummary struct {
	*domain.Question
	PublishedRecently bool `json:"was_published_recently"`
}

type indexResponse struct {
	Questions []questionSummary `json:"questions"`
	Message   string            `json:"message,omitempty"`
}

// Index godoc
// @Summary      Lists the latest questions
// @Description  Returns the five most recently published questions, newest first. An `error` query parameter is echoed back as `message`.
// @Tags         polls
// @Produce      json
// @Success      200
// @Router       /polls [get]
func (h *QuestionHandler) Index(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Index(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	now := h.now()
	res := indexResponse{
		Questions: make([]questionSummary, 0, len(questions)),
		Message:   r.URL.Query().Get("error"),
	}
	for _, q := range questions {
		res.Questions = append(res.Questions, questionSummary{
			Question:          q,
			PublishedRecently: q.WasPublishedRecently(now),
		})
	}

	writeJSON(w, http.StatusOK, res)
}

// Detail godoc
// @Summary      Gets a question open for voting
// @Description  Redirects to the index with a message when the question is not open for voting.
// @Tags         polls
// @Produce      json
// @Param        id   path      string  true  "Question ID"
// @Success      200
// @Success      303
// @Failure      404
// @Router       /polls/{id} [get]
func (h *QuestionHandler) Detail(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuestionNotFound):
			writeError(w, http.StatusNotFound, "question not found")
		case errors.Is(err, domain.ErrVotingClosed):
			redirectToIndex(w, r, CantVoteMessage)
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *QuestionHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func redirectToIndex(w http.ResponseWriter, r *http.Request, message string) {
	target := "/api/polls?" + url.Values{"error": {message}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}
