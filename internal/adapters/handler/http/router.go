package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/vncsmyrnk/polls/docs"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type Handlers struct {
	Questions *QuestionHandler
	Votes     *VoteHandler
	Admin     *AdminHandler
	Auth      ports.AuthService
	// Live is mounted only when set.
	Live http.HandlerFunc
}

func NewHandler(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Questions.Index)
			r.Get("/{id}", h.Questions.Detail)
			r.Get("/{id}/results", h.Questions.Results)
			r.Post("/{id}/vote", h.Votes.Vote)
			if h.Live != nil {
				r.Get("/{id}/live", h.Live)
			}
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnly(h.Auth))
			r.Post("/questions", h.Admin.CreateQuestion)
			r.Delete("/questions/{id}", h.Admin.DeleteQuestion)
		})
	})

	return r
}
