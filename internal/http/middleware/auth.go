package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// BearerAuth requires an "Authorization: Bearer <token>" header.
// With a non-empty allow list the token must match one entry. With an empty list any
// non-empty token is accepted and validation is left to the hosting platform.
// Failures are returned as a 401 fiber.Error for the app's ErrorHandler to render.
func BearerAuth(tokens []string) fiber.Handler {
	allowed := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		allowed = append(allowed, []byte(t))
	}

	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if len(allowed) == 0 {
				return key != "", nil
			}
			for _, a := range allowed {
				if subtle.ConstantTimeCompare(a, []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(_ *fiber.Ctx, _ error) error {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or invalid bearer token")
		},
	})
}
