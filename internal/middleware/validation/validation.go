// Package validation rejects malformed write requests before they reach the
// handlers.
package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// modelIDPattern accepts hub-style ids: an optional org prefix plus a
// repository name, each limited to safe characters.
var modelIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(/[A-Za-z0-9][A-Za-z0-9._-]*)?$`)

var injectionPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=)`)

type Config struct {
	MaxBodyBytes        int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		if contentType := c.Get("Content-Type"); contentType != "" {
			allowed := false
			for _, allowedType := range cfg.AllowedContentTypes {
				if strings.Contains(contentType, allowedType) {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if len(c.Body()) > cfg.MaxBodyBytes {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Request body exceeds maximum size",
			})
		}

		if strings.Contains(c.Path(), "/compliance") || strings.Contains(c.Path(), "/evidence") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			modelID, ok := req["model_id"].(string)
			if !ok || modelID == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "model_id is required and must be a string",
				})
			}

			if !ValidModelID(modelID) {
				cfg.Logger.Warn("Rejected malformed model id",
					zap.String("ip", c.IP()),
					zap.String("model_id", modelID),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid model_id format",
				})
			}
		}

		if strings.Contains(c.Path(), "/risks") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			title, _ := req["title"].(string)
			if injectionPattern.MatchString(title) {
				cfg.Logger.Warn("Rejected risk title with markup",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid title content",
				})
			}
		}

		return c.Next()
	}
}

// ValidModelID reports whether a model id has the org/name shape hubs use.
func ValidModelID(modelID string) bool {
	if len(modelID) > 256 {
		return false
	}
	return modelIDPattern.MatchString(modelID)
}
