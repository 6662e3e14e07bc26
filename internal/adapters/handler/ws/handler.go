package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type Handler struct {
	hub      *Hub
	tallies  ports.TallyService
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, tallies ports.TallyService) *Handler {
	return &Handler{
		hub:     hub,
		tallies: tallies,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Live streams the tally of one question: the current counts first, then one
// message per vote.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	questionID, err := uuid.Parse(id)
	if err != nil {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}

	tally, err := h.tallies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			http.Error(w, "question not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to get live tally", "question_id", id, "error", err)
		http.Error(w, "failed to get tally", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewWebsocketClient(conn)
	if initial, err := json.Marshal(TallyMessage{QuestionID: questionID, Tally: tally}); err == nil {
		if err := client.WriteMessage(websocket.TextMessage, initial); err != nil {
			client.Close()
			return
		}
	}

	h.hub.Register(questionID, client)
	defer h.hub.Unregister(questionID, client)

	// Keep the connection open until the peer goes away.
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			return
		}
	}
}
