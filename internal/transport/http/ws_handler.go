package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"quizgame-service/internal/domain"
)

const maxInboundBytes = 4096

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Position  int      `json:"position"`
	AnswerIDs []string `json:"answerIds"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// playerSocket serves a pull-only websocket: every inbound frame is answered
// with the player's reconciled status or an error. Nothing is pushed.
func (h *Handler) playerSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := playerIDParam(w, ps)
	if !ok {
		return
	}
	if _, err := h.service.PlayerStatus(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "player_id", id, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxInboundBytes)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("ws read error", "player_id", id, "error", err)
			}
			return
		}
		reply := h.handleInbound(r, id, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			h.log.Warn("ws write error", "player_id", id, "error", err)
			return
		}
	}
}

func (h *Handler) handleInbound(r *http.Request, id domain.PlayerID, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "ping":
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return socketError("BadRequest", "invalid answer payload")
		}
		if err := h.service.SubmitAnswer(r.Context(), id, payload.Position, payload.AnswerIDs); err != nil {
			return h.socketFailure(err)
		}
	default:
		return socketError("BadRequest", "unsupported message type")
	}

	status, err := h.service.PlayerStatus(r.Context(), id)
	if err != nil {
		return h.socketFailure(err)
	}
	return outboundMessage{Type: "status", Payload: status}
}

func (h *Handler) socketFailure(err error) outboundMessage {
	if statusFor(err) == http.StatusInternalServerError {
		h.log.Error("ws request failed", "error", err)
		return socketError(http.StatusText(http.StatusInternalServerError), "internal error")
	}
	return socketError(domain.CodeOf(err), err.Error())
}

func socketError(code, message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorResponse{Error: code, Message: message}}
}
