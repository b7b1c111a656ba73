package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	APIVersion string    `json:"apiVersion"`
	Error      errorBody `json:"error"`
}

// ErrorHandler is the terminal fiber error handler: anything a route returns
// without mapping itself becomes a JSON error envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("unhandled error", "path", ctx.Path(), "code", code, "error", err)
		message = "Internal server error"
	}
	return ctx.Status(code).JSON(errorResponse{
		APIVersion: "1",
		Error:      errorBody{Code: code, Message: message},
	})
}
