package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/logging"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type fileRequest struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
}

func (h *handlers) rpc(c *fiber.Ctx) error {
	out := h.Server.HandleJSON(c.UserContext(), c.Body())
	if out == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(out)
}

func (h *handlers) prompt(c *fiber.Ctx) error {
	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing prompt"})
	}

	res, err := h.Server.Ask(c.UserContext(), req.Prompt)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": hnerr.GetUserMessage(err)})
	}
	return c.JSON(res)
}

func (h *handlers) navContext(c *fiber.Ctx) error {
	ctx, ok := h.Server.Context()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": hnerr.GetUserMessage(hnerr.CallbacksUnbound())})
	}
	return c.JSON(ctx)
}

func (h *handlers) saveFile(c *fiber.Ctx) error {
	var req fileRequest
	if err := c.BodyParser(&req); err != nil || req.Filename == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing filename or code"})
	}

	name, err := h.Store.Save(c.UserContext(), req.Filename, req.Code)
	if err != nil {
		if errors.Is(err, filestore.ErrInvalidName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
		}
		h.log.Error("save failed", logging.Path(req.Filename), logging.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error saving file"})
	}
	return c.JSON(fiber.Map{"message": "Saved as " + name})
}

func (h *handlers) listFiles(c *fiber.Ctx) error {
	files, err := h.Store.List(c.UserContext())
	if err != nil {
		h.log.Error("list failed", logging.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read files"})
	}
	return c.JSON(fiber.Map{"files": files})
}

func (h *handlers) loadFile(c *fiber.Ctx) error {
	content, err := h.Store.Load(c.UserContext(), c.Params("filename"))
	switch {
	case errors.Is(err, filestore.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	case errors.Is(err, filestore.ErrInvalidName):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"content": content})
}

func (h *handlers) upload(c *fiber.Ctx) error {
	var req fileRequest
	if err := c.BodyParser(&req); err != nil || req.Filename == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing filename or code"})
	}

	if _, err := h.Uploader.Upload(c.UserContext(), req.Filename, req.Code); err != nil {
		if errors.Is(err, filestore.ErrInvalidName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid file name"})
		}
		h.log.Error("upload failed", logging.Path(req.Filename), logging.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Upload failed"})
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("%s uploaded to server successfully.", req.Filename)})
}

func statusFor(err error) int {
	switch hnerr.GetCode(err) {
	case "callbacks_unbound", "classifier_not_configured":
		return fiber.StatusServiceUnavailable
	case "invalid_params", "unknown_target":
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
