package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type VoteHandler struct {
	votes     ports.VoteService
	questions ports.QuestionService
}

func NewVoteHandler(votes ports.VoteService, questions ports.QuestionService) *VoteHandler {
	return &VoteHandler{
		votes:     votes,
		questions: questions,
	}
}

type voteErrorResponse struct {
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	Question *domain.Question `json:"question,omitempty"`
}

// Vote godoc
// @Summary      Votes on a choice
// @Description  Expects the form field `choice`. Redirects to the question results on success.
// @Tags         polls
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        id      path      string  true  "Question ID"
// @Param        choice  formData  string  true  "Choice ID"
// @Success      303
// @Failure      400
// @Failure      403
// @Failure      404
// @Router       /polls/{id}/vote [post]
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	id := chi.URLParam(r, "id")
	questionID, err := h.votes.Vote(r.Context(), ports.VoteInput{
		QuestionID: id,
		ChoiceID:   r.FormValue("choice"),
	})
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			// Hand the question back so the client can redisplay the form.
			question, _ := h.questions.Detail(r.Context(), id)
			writeJSON(w, http.StatusBadRequest, voteErrorResponse{
				Error:    http.StatusText(http.StatusBadRequest),
				Message:  validationErr.Message,
				Question: question,
			})
		case errors.Is(err, domain.ErrQuestionNotFound):
			writeError(w, http.StatusNotFound, "question not found")
		case errors.Is(err, domain.ErrVotingClosed):
			writeError(w, http.StatusForbidden, CantVoteMessage)
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/api/polls/"+questionID.String()+"/results", http.StatusSeeOther)
}
