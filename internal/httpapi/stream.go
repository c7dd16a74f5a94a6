package httpapi

import (
	"bufio"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/valyala/fasthttp"

	"github.com/tenxer/handnav/internal/logging"
)

// logs streams tailed lines as server-sent events. A comment line is
// written every KeepAlive so dead clients are noticed.
func (h *handlers) logs(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	lines, unsubscribe := h.Logs.Subscribe()
	keepAlive := h.KeepAlive
	log := h.log

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return
				}
				_, _ = w.WriteString("data: " + line + "\n\n")
			case <-ticker.C:
				_, _ = w.WriteString(": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug("log client disconnected", logging.Error(err))
				return
			}
		}
	}))
	return nil
}

func (h *handlers) upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// socket carries one protocol envelope per text message. Notifications
// get no reply.
func (h *handlers) socket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer func() { _ = conn.Close() }()

		h.log.Debug("websocket opened", logging.F("remote", conn.RemoteAddr().String()))
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn("websocket read failed", logging.Error(err))
				}
				return
			}
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}
			out := h.Server.HandleJSON(ctx, msg)
			if out == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				h.log.Warn("websocket write failed", logging.Error(err))
				return
			}
		}
	})
}
