package handlers

import (
	"errors"
	"log/slog"
	"memo-store/services"
	"memo-store/validator"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
}

func validationFailed(c *fiber.Ctx, errs validator.ValidationErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": errs,
	})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      message,
		"request_id": requestID,
	})
}

// respondError maps service errors to HTTP responses; message is used for
// anything unexpected
func respondError(c *fiber.Ctx, err error, message string) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return validationFailed(c, verrs)
	case errors.Is(err, services.ErrMemoNotFound):
		return notFound(c, "Memo not found")
	case errors.Is(err, services.ErrInvalidID):
		return badRequest(c, err.Error())
	default:
		return serverErrorWithDetails(c, message, err)
	}
}

func memoID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, services.ErrInvalidID
	}
	return id, nil
}
