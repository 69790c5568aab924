package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/service"
	"github.com/maheshrc27/autopost/pkg/utils"
)

const ApiKeyHeader = "X-API-Key"

type AuthMiddleware struct {
	s   service.ApiKeyService
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config, service service.ApiKeyService) *AuthMiddleware {
	return &AuthMiddleware{s: service, cfg: cfg}
}

// AuthMiddleware accepts either a bearer session token or an API key and
// stores the caller's user_id in the request locals.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		apiKey := c.Get(ApiKeyHeader)
		if apiKey == "" {
			apiKey = c.Query("api_key")
		}

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token or API key",
			})
		}

		if tokenString != "" {
			claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
			if err != nil {
				slog.Info("token validation failed", "error", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}

			c.Locals("user_id", claims.UserID)
			c.Locals("email", claims.Email)
			return c.Next()
		}

		userID, err := m.s.GetUserID(c.UserContext(), apiKey)
		if err != nil {
			slog.Info("api key rejected", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
