package handlers

import (
	"errors"

	"github.com/arzan03/FileShare/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var statusByKind = map[services.Kind]int{
	services.KindInvalidInput:       fiber.StatusBadRequest,
	services.KindUnauthenticated:    fiber.StatusUnauthorized,
	services.KindForbidden:          fiber.StatusForbidden,
	services.KindNotFound:           fiber.StatusNotFound,
	services.KindPasswordRequired:   fiber.StatusBadRequest,
	services.KindInvalidPassword:    fiber.StatusUnauthorized,
	services.KindStorageUnavailable: fiber.StatusBadGateway,
	services.KindInternal:           fiber.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: "Something went wrong", Err: err}
	}
	return c.Status(StatusFor(se.Kind)).JSON(fiber.Map{
		"success": false,
		"error":   se.Kind,
		"message": se.Message,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return writeError(c, &services.Error{Kind: services.KindInvalidInput, Message: msg})
}

// ErrorHandler renders errors that escape the handlers, including Fiber's own
// (unknown routes, oversized bodies), in the same shape.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := services.KindInternal
			switch {
			case fe.Code == fiber.StatusNotFound:
				kind = services.KindNotFound
			case fe.Code < fiber.StatusInternalServerError:
				kind = services.KindInvalidInput
			}
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   kind,
				"message": fe.Message,
			})
		}

		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   services.KindInternal,
			"message": "Something went wrong",
		})
	}
}
