package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

// TallyMessage is the payload pushed to subscribers.
type TallyMessage struct {
	QuestionID uuid.UUID    `json:"question_id"`
	Tally      domain.Tally `json:"tally"`
}

type subscription struct {
	questionID uuid.UUID
	client     Client
}

type message struct {
	questionID uuid.UUID
	payload    []byte
}

// Hub fans tally updates out to the subscribers of each question. All
// subscription state is owned by the Run goroutine.
type Hub struct {
	clients    map[uuid.UUID]map[Client]bool
	register   chan subscription
	unregister chan subscription
	broadcast  chan message
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[Client]bool),
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
	}
}

// Run processes subscriptions and broadcasts until ctx is cancelled, then
// closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for client := range clients {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[Client]bool)
			return
		case sub := <-h.register:
			if h.clients[sub.questionID] == nil {
				h.clients[sub.questionID] = make(map[Client]bool)
			}
			h.clients[sub.questionID][sub.client] = true
		case sub := <-h.unregister:
			h.remove(sub.questionID, sub.client)
		case msg := <-h.broadcast:
			for client := range h.clients[msg.questionID] {
				if err := client.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					slog.Warn("dropping live tally subscriber", "question_id", msg.questionID, "error", err)
					h.remove(msg.questionID, client)
				}
			}
		}
	}
}

func (h *Hub) remove(questionID uuid.UUID, client Client) {
	clients, ok := h.clients[questionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		client.Close()
	}
	if len(clients) == 0 {
		delete(h.clients, questionID)
	}
}

func (h *Hub) Register(questionID uuid.UUID, client Client) {
	select {
	case h.register <- subscription{questionID: questionID, client: client}:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(questionID uuid.UUID, client Client) {
	select {
	case h.unregister <- subscription{questionID: questionID, client: client}:
	case <-h.done:
	}
}

// Notify queues a tally update for the subscribers of questionID. It never
// blocks: when the queue is full the update is dropped. Every message carries
// the whole tally, so a later update supersedes it.
func (h *Hub) Notify(questionID uuid.UUID, tally domain.Tally) {
	payload, err := json.Marshal(TallyMessage{QuestionID: questionID, Tally: tally})
	if err != nil {
		slog.Error("failed to encode tally message", "question_id", questionID, "error", err)
		return
	}

	select {
	case h.broadcast <- message{questionID: questionID, payload: payload}:
	case <-h.done:
	default:
		slog.Warn("live tally queue full; dropping update", "question_id", questionID)
	}
}
