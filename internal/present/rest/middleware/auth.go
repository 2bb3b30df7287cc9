package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/avdeyev/shiftdesk/internal/domain"
	"github.com/avdeyev/shiftdesk/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// IdentifyActor resolves the bearer token (or the access_token cookie set
// on login) into an Actor and attaches it to the request context. Absent
// or invalid credentials are not an error here; protected handlers reject
// requests without an actor themselves.
func (m *AuthMiddleware) IdentifyActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyActor")
		defer span.End()

		token := ""

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) == 2 && split[0] == "Bearer" {
				token = split[1]
			}
		}

		if token == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				token = cookie.Value
			}
		}

		if token != "" {
			actor, err := m.auth.Authenticate(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyActor: authenticate failed"))
			} else {
				ctx = context.WithValue(ctx, domain.ActorCtxKey, actor)
				span.SetAttributes(attribute.Int64("ActorId", actor.ID))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// ActorFrom extracts the authenticated actor from a request context.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(domain.ActorCtxKey).(domain.Actor)
	return actor, ok
}
