package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/service/identity"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

const LocalSession = "session"

// AuthRequired validates a Bearer access token against the live session
// store. On success the session is kept in c.Locals(LocalSession) and the
// caller is attached to the user context as a reqctx.Principal.
func AuthRequired(ids identity.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.ErrUnauthorized
		}

		sess, err := ids.SessionFromToken(c.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrSessionNotFound) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		c.Locals(LocalSession, sess)
		c.SetContext(reqctx.WithPrincipal(c.Context(), reqctx.Principal{
			SubjectID: sess.SubjectID,
			Role:      sess.Role,
			SessionID: sess.ID,
		}))
		return c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SessionFromFiber returns the session stored by AuthRequired.
func SessionFromFiber(c fiber.Ctx) (*identity.Session, bool) {
	sess, ok := c.Locals(LocalSession).(*identity.Session)
	return sess, ok && sess != nil
}
