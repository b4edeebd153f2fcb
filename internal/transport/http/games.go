package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"quizgame-service/internal/domain"
)

const qrSize = 320

type startGameRequest struct {
	AutoStartNum int `json:"autoStartNum"`
}

type startGameResponse struct {
	GameID domain.GameID `json:"gameId"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	PlayerID domain.PlayerID `json:"playerId"`
}

func (h *Handler) startGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req startGameRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	id, err := h.service.StartGame(r.Context(), ps.ByName("quizId"), req.AutoStartNum)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, startGameResponse{GameID: id})
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	list, err := h.service.ListGames(r.Context(), ps.ByName("quizId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) gameStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := gameIDParam(w, ps)
	if !ok {
		return
	}
	status, err := h.service.GameStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := gameIDParam(w, ps)
	if !ok {
		return
	}
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.service.ApplyAction(r.Context(), id, action); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) gameResults(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := gameIDParam(w, ps)
	if !ok {
		return
	}
	res, err := h.service.GameResults(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := gameIDParam(w, ps)
	if !ok {
		return
	}
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	playerID, err := h.service.Join(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{PlayerID: playerID})
}

// lobbyQR renders a PNG QR code of the join link for a game.
func (h *Handler) lobbyQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := gameIDParam(w, ps)
	if !ok {
		return
	}
	if _, err := h.service.GameStatus(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	link := h.joinURL(r, id)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("encode qr: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Join-URL", link)
	_, _ = w.Write(png)
}

func (h *Handler) joinURL(r *http.Request, id domain.GameID) string {
	base := strings.TrimSuffix(h.publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return fmt.Sprintf("%s/play/%d", base, id)
}

func gameIDParam(w http.ResponseWriter, ps httprouter.Params) (domain.GameID, bool) {
	id, err := strconv.Atoi(ps.ByName("gameId"))
	if err != nil {
		badRequest(w, "game id must be an integer")
		return 0, false
	}
	return domain.GameID(id), true
}
