package handlers

import (
	"context"
	"memo-store/app"
	"memo-store/models"
	"memo-store/storage"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateMemo stores a new memo; any id in the body is ignored
func CreateMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateMemoRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		memo, err := a.MemoService.Create(c.UserContext(), req)
		if err != nil {
			return respondError(c, err, "Failed to create memo")
		}

		return created(c, fiber.Map{"memo": memo})
	}
}

// GetMemo retrieves a memo by id
func GetMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := memoID(c)
		if err != nil {
			return respondError(c, err, "")
		}

		memo, err := a.MemoService.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err, "Failed to fetch memo")
		}

		return success(c, fiber.Map{"memo": memo})
	}
}

// UpdateMemo replaces the text of an existing memo
func UpdateMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := memoID(c)
		if err != nil {
			return respondError(c, err, "")
		}

		var req models.UpdateMemoRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		memo, err := a.MemoService.Update(c.UserContext(), id, req)
		if err != nil {
			return respondError(c, err, "Failed to update memo")
		}

		return success(c, fiber.Map{"memo": memo})
	}
}

// DeleteMemo removes a memo
func DeleteMemo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := memoID(c)
		if err != nil {
			return respondError(c, err, "")
		}

		if err := a.MemoService.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err, "Failed to delete memo")
		}

		return success(c, fiber.Map{
			"message": "Memo deleted successfully",
		})
	}
}

// ListMemos returns one page of memos.
// Query: page (0-indexed), size, and repeatable sort=field[,asc|desc]
func ListMemos(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		size := c.QueryInt("size", defaultPageSize)
		if size > maxPageSize {
			size = maxPageSize
		}

		var sortValues []string
		for _, v := range c.Context().QueryArgs().PeekMulti("sort") {
			sortValues = append(sortValues, string(v))
		}

		req := models.PageRequest{
			Page: c.QueryInt("page", 0),
			Size: size,
			Sort: models.ParseSort(sortValues),
		}

		page, err := a.MemoService.List(c.UserContext(), req)
		if err != nil {
			return respondError(c, err, "Failed to list memos")
		}

		return success(c, fiber.Map{
			"memos":          page.Memos,
			"page":           page.Page,
			"size":           page.Size,
			"total_elements": page.TotalElements,
			"total_pages":    page.TotalPages,
		})
	}
}

// Health reports whether the store is reachable
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := storage.Ping(ctx, a.Store); err != nil {
			a.Logger.Warn("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
