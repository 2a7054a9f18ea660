package server

import (
	"log/slog"

	"recipebox/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade rejects plain HTTP requests to the activity stream.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// WebsocketHandler streams the caller's activity events (post images,
// comments, ratings) published through Redis.
// @Summary Activity stream
// @Tags realtime
// @Security BearerAuth
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(localUserID).(uint)
		if !ok || s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"activity stream unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
