package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"brainchild-quiz-service/internal/app"
	"github.com/gorilla/websocket"
)

// WSHandler runs a play session over a single WebSocket connection. The
// player is identified by the auth middleware before the upgrade.
type WSHandler struct {
	service  *app.PlayService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.PlayService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type playPayload struct {
	QuizID        string `json:"quizId"`
	QuestionIndex *int   `json:"questionIndex"`
	ChosenLetter  string `json:"chosenLetter"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// ServeWS upgrades the request and serves start/current/answer/finish
// messages until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := PlayerFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// Unblocks the reader's ReadJSON.
				_ = conn.Close()
				return
			}
		}
	}()

	emit := func(msg outboundMessage) bool { return deliver(send, writerDone, msg) }

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var payload playPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if !emit(errorMessage("invalid payload", http.StatusBadRequest)) {
					break
				}
				continue
			}
		}
		if payload.QuizID == "" {
			if !emit(errorMessage("quizId is required", http.StatusBadRequest)) {
				break
			}
			continue
		}
		for _, msg := range h.handle(r.Context(), playerID, inbound.Type, payload) {
			if !emit(msg) {
				break read
			}
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, playerID, kind string, p playPayload) []outboundMessage {
	switch kind {
	case "start":
		session, err := h.service.Start(ctx, playerID, p.QuizID)
		if err != nil {
			return []outboundMessage{domainErrorMessage(err)}
		}
		return []outboundMessage{{Type: "started", Payload: newStartedResponse(session)}}
	case "current":
		view, err := h.service.Current(ctx, playerID, p.QuizID)
		if err != nil {
			return []outboundMessage{domainErrorMessage(err)}
		}
		return []outboundMessage{{Type: "question", Payload: view}}
	case "answer":
		if p.QuestionIndex == nil {
			return []outboundMessage{errorMessage("questionIndex is required", http.StatusBadRequest)}
		}
		grade, err := h.service.Submit(ctx, playerID, p.QuizID, *p.QuestionIndex, p.ChosenLetter)
		if err != nil {
			return []outboundMessage{domainErrorMessage(err)}
		}
		out := []outboundMessage{{Type: "answerResult", Payload: grade}}
		if !grade.IsLastQuestion {
			if view, err := h.service.Current(ctx, playerID, p.QuizID); err == nil {
				out = append(out, outboundMessage{Type: "question", Payload: view})
			}
		}
		return out
	case "finish":
		result, err := h.service.Finish(ctx, playerID, p.QuizID)
		if err != nil {
			return []outboundMessage{domainErrorMessage(err)}
		}
		return []outboundMessage{{Type: "result", Payload: newResultResponse(result)}}
	default:
		return []outboundMessage{errorMessage("unsupported message type", http.StatusBadRequest)}
	}
}

// deliver queues msg for the writer and reports false once the writer has stopped.
func deliver(send chan<- outboundMessage, writerDone <-chan struct{}, msg outboundMessage) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func errorMessage(msg string, status int) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg, Status: status}}
}

func domainErrorMessage(err error) outboundMessage {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("ws play failed: %v", err)
		msg = http.StatusText(status)
	}
	return errorMessage(msg, status)
}
