package server

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/middleware"
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the response.
// Handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

const (
	localUserID = "userID"
	localClaims = "claims"
)

// AuthRequired rejects requests without a valid, unrevoked bearer token for
// an active account before any handler runs.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication credentials were not provided."))
		}

		claims, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}

		user, err := s.userService.Get(c.UserContext(), claims.UserID)
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			return respondError(c, err)
		}
		if err != nil || !user.IsActive {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("User inactive or deleted."))
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localClaims, claims)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// requireFlag hides a route behind a feature flag; disabled routes 404.
func (s *Server) requireFlag(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(localUserID).(uint)
		if !s.featureFlags.Enabled(name, userID) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: models.CodeNotFound, Message: "Not found."})
		}
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func currentClaims(c *fiber.Ctx) *middleware.TokenClaims {
	claims, _ := c.Locals(localClaims).(*middleware.TokenClaims)
	return claims
}

// parseID extracts a positive route parameter. Ids that cannot exist are
// reported as 404 like any other unknown record.
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(resource, c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// statusForCode maps AppError codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return models.CodeValidation
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return models.CodeNotFound
	case fiber.StatusConflict:
		return models.CodeConflict
	default:
		return models.CodeInternal
	}
}

// respondError renders a service error with the status its code implies.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == models.CodeInternal {
			middleware.Logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err.Error())
		}
		return models.RespondWithError(c, statusForCode(appErr.Code), appErr)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err.Error())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}
