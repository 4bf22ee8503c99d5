package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// WSHandler serves the observer feed: admin monitors, play views, and public
// leaderboards all attach here. The connection is one-way; submissions go
// through POST /submit-answer.
type WSHandler struct {
	service  *app.SubmissionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SubmissionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and streams quiz events. The first frame is
// always a full snapshot, so an observer connecting mid-quiz (or reconnecting
// after missed events) starts from consistent state before the live feed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before taking the snapshot so no event falls in between.
	updates, cancel, err := h.service.Subscribe(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	snap, err := h.service.Snapshot(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage[domain.Snapshot]{Type: "snapshot", Payload: snap}); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Event]{Type: "event", Payload: ev}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerGone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
