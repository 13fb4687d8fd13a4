package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// fieldError describes a single invalid request field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrors []fieldError

func (v *validationErrors) add(field, message string) {
	*v = append(*v, fieldError{Field: field, Message: message})
}

// respond renders the collected field errors as a 400 response.
func (v validationErrors) respond(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation failed",
		"errors":  v,
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
