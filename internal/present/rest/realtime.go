package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/avdeyev/shiftdesk/internal/present/rest/presenter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleChatRealtime(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	chatID, err := pathID(c)
	if err != nil {
		return presenter.Resolve(c, err)
	}

	ctx := c.Request().Context()

	member, err := h.chats.Member(ctx, a, chatID)
	if err != nil {
		return presenter.Resolve(c, err)
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this chat"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	output, unsubscribe, err := h.signal.Subscribe(ctx, chatID)
	if err != nil {
		slog.ErrorContext(
			ctx, "Failed to subscribe to chat stream",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return nil
	}
	defer unsubscribe()

	quit := make(chan struct{})

	// The read loop only watches for the peer going away; inbound frames
	// are heartbeats and get dropped.
	go func() {
		defer close(quit)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.InfoContext(
						ctx, "Socket closed unexpectedly",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case msg, ok := <-output:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(msg); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
