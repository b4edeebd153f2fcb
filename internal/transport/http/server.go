package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"quizgame-service/internal/app"
)

// Handler exposes the game use cases over REST and a per-player websocket.
type Handler struct {
	service   *app.GameService
	log       *slog.Logger
	publicURL string
	upgrader  websocket.Upgrader
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithPublicURL sets the base of the join links encoded in lobby QR codes.
func WithPublicURL(u string) Option {
	return func(h *Handler) { h.publicURL = u }
}

func NewHandler(service *app.GameService, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		log:     slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the router wrapped in request logging.
func (h *Handler) Routes() http.Handler {
	r := httprouter.New()
	r.GET("/healthz", h.health)

	r.POST("/quizzes/:quizId/games", h.startGame)
	r.GET("/quizzes/:quizId/games", h.listGames)

	r.GET("/games/:gameId", h.gameStatus)
	r.PUT("/games/:gameId/action", h.applyAction)
	r.GET("/games/:gameId/results", h.gameResults)
	r.GET("/games/:gameId/qr", h.lobbyQR)
	r.POST("/games/:gameId/players", h.join)

	r.GET("/players/:playerId", h.playerStatus)
	r.GET("/players/:playerId/ws", h.playerSocket)
	r.GET("/players/:playerId/results", h.playerResults)
	r.GET("/players/:playerId/questions/:position", h.playerQuestion)
	r.PUT("/players/:playerId/questions/:position/answers", h.submitAnswer)
	r.GET("/players/:playerId/questions/:position/results", h.questionResult)

	return withRequestLogging(h.log, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Write([]byte("ok"))
}
