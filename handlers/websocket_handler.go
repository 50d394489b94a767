package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/savantarmorer/sb1-kxlgah-sub002/notify"
	"github.com/savantarmorer/sb1-kxlgah-sub002/realtime"
	"github.com/savantarmorer/sb1-kxlgah-sub002/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to trusted origins once the frontend domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub               *realtime.Hub
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, ts services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tournamentService: ts, logger: logger}
}

// ServeWs handles GET /ws/tournaments/{tournamentID}: upgrades the
// connection and joins it to the tournament's spectator channel.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Reject subscriptions to tournaments that do not exist.
	if _, err := h.tournamentService.GetTournamentSnapshot(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("tournament_id", id), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:     h.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Channel: notify.TournamentChannel(id),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
