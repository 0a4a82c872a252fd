// Package auth gates the private part of the API behind bearer tokens. Token
// issuance (signup/login) is owned by the platform's user service; this
// service only verifies.
package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

func New(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// Protect verifies and authenticates the request token. The sensor upload
// endpoint and the device event stream are deliberately exempt from it:
// field devices carry no credentials.
func Protect(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	verifier := jwtauth.Verifier(ja)
	authenticator := jwtauth.Authenticator(ja)

	return func(next http.Handler) http.Handler {
		return verifier(authenticator(next))
	}
}

// Subject returns the authenticated principal from the request context, or
// an empty string on the public routes.
func Subject(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}

	if sub, ok := claims["sub"].(string); ok {
		return sub
	}

	return ""
}
