// Package httpapi exposes the protocol server, the prompt pipeline, the
// sketch store and the uploader log over HTTP and websockets.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/tenxer/handnav/internal/config"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/logging"
	"github.com/tenxer/handnav/internal/protocol"
)

// HeaderRequestID carries the per-request id.
const HeaderRequestID = "X-Request-ID"

const defaultKeepAlive = 15 * time.Second

// LogSource feeds the /logs event stream.
type LogSource interface {
	Subscribe() (<-chan string, func())
}

// Deps are the collaborators behind the routes. Store, Uploader and Logs
// are optional; their routes are only registered when set.
type Deps struct {
	Server   *protocol.Server
	Store    filestore.Store
	Uploader *filestore.Uploader
	Logs     LogSource
	Config   config.HTTPConfig

	// KeepAlive is the SSE comment interval. Zero means 15s.
	KeepAlive time.Duration
}

type handlers struct {
	Deps
	log *logging.Logger
}

// New builds the fiber app.
func New(d Deps) *fiber.App {
	if d.KeepAlive <= 0 {
		d.KeepAlive = defaultKeepAlive
	}
	h := &handlers{Deps: d, log: logging.Global().WithPrefix("httpapi")}

	cfg := fiber.Config{
		AppName:               protocol.ServerName,
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	}
	if d.Config.BodyLimit > 0 {
		cfg.BodyLimit = d.Config.BodyLimit
	}
	app := fiber.New(cfg)

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(h.requestID)

	app.Post("/rpc", h.rpc)
	app.Use("/ws", h.upgradeOnly)
	app.Get("/ws", h.socket())

	api := app.Group("/api")
	api.Post("/prompt", h.prompt)
	api.Get("/context", h.navContext)

	if d.Store != nil {
		api.Post("/save-file", h.saveFile)
		api.Get("/files", h.listFiles)
		api.Get("/file/:filename", h.loadFile)
	}
	if d.Uploader != nil {
		app.Post("/upload", h.upload)
	}
	if d.Logs != nil {
		app.Get("/logs", h.logs)
	}
	return app
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(addr) }()

	logging.Global().WithPrefix("httpapi").Info("listening", logging.F("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (h *handlers) requestID(c *fiber.Ctx) error {
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)
	c.Locals("request_id", id)

	start := time.Now()
	err := c.Next()
	h.log.Debug("request",
		logging.RequestID(id),
		logging.Method(c.Method()),
		logging.Path(c.Path()),
		logging.F("status", c.Response().StatusCode()),
		logging.DurationSince(start))
	return err
}

func (h *handlers) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			logging.F("request_id", c.Locals("request_id")),
			logging.Path(c.Path()),
			logging.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
