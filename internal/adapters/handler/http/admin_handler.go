package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type AdminHandler struct {
	service ports.QuestionService
}

func NewAdminHandler(service ports.QuestionService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

type createQuestionRequest struct {
	Text    string     `json:"question_text"`
	PubDate *time.Time `json:"pub_date"`
	EndDate *time.Time `json:"end_date"`
	Choices []string   `json:"choices"`
}

// CreateQuestion godoc
// @Summary      Creates a question
// @Description  `pub_date` defaults to now. At least two choices are required.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201
// @Failure      400
// @Failure      401
// @Router       /admin/questions [post]
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.service.Create(r.Context(), ports.CreateQuestionInput{
		Text:    req.Text,
		PubDate: req.PubDate,
		EndDate: req.EndDate,
		Choices: req.Choices,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

// DeleteQuestion godoc
// @Summary      Deletes a question and its choices
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      string  true  "Question ID"
// @Success      204
// @Failure      401
// @Failure      404
// @Router       /admin/questions/{id} [delete]
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
