package http

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"quizgame-service/internal/domain"
)

type answerRequest struct {
	AnswerIDs []string `json:"answerIds"`
}

func (h *Handler) playerStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := playerIDParam(w, ps)
	if !ok {
		return
	}
	status, err := h.service.PlayerStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) playerQuestion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, position, ok := playerPositionParams(w, ps)
	if !ok {
		return
	}
	q, err := h.service.QuestionForPlayer(r.Context(), id, position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, position, ok := playerPositionParams(w, ps)
	if !ok {
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := h.service.SubmitAnswer(r.Context(), id, position, req.AnswerIDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) questionResult(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, position, ok := playerPositionParams(w, ps)
	if !ok {
		return
	}
	res, err := h.service.QuestionResult(r.Context(), id, position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) playerResults(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := playerIDParam(w, ps)
	if !ok {
		return
	}
	res, err := h.service.PlayerResults(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func playerIDParam(w http.ResponseWriter, ps httprouter.Params) (domain.PlayerID, bool) {
	id, err := strconv.Atoi(ps.ByName("playerId"))
	if err != nil {
		badRequest(w, "player id must be an integer")
		return 0, false
	}
	return domain.PlayerID(id), true
}

func playerPositionParams(w http.ResponseWriter, ps httprouter.Params) (domain.PlayerID, int, bool) {
	id, ok := playerIDParam(w, ps)
	if !ok {
		return 0, 0, false
	}
	position, err := strconv.Atoi(ps.ByName("position"))
	if err != nil {
		badRequest(w, "question position must be an integer")
		return 0, 0, false
	}
	return id, position, true
}
