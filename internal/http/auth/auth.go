// Package auth turns a verified JWT bearer token into the actor passed to
// every core call.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
)

// RoleHeader selects which of the token's roles the caller acts in. Without
// it the first role is used.
const RoleHeader = "X-Acting-Role"

type Claims struct {
	Roles  []string `json:"roles"`
	Wallet string   `json:"wallet,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// Issue signs a token for subject. The console and tests use it; production
// tokens come from the identity provider sharing the secret.
func Issue(secret, issuer, subject string, roles []actor.Role, wallet string, ttl time.Duration) (string, error) {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	now := time.Now()
	claims := Claims{
		Roles:  names,
		Wallet: wallet,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Middleware verifies the bearer token and stores the acting actor in the
// request context.
func Middleware(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "authorization header required", http.StatusUnauthorized)
				return
			}

			var claims Claims

			_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return []byte(secret), nil
			},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(issuer),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			a, err := actingAs(claims, r.Header.Get(RoleHeader))
			if err != nil {
				http.Error(w, err.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, a)))
		})
	}
}

func actingAs(claims Claims, requested string) (actor.Actor, error) {
	if len(claims.Roles) == 0 {
		return actor.Actor{}, fmt.Errorf("token carries no roles")
	}

	role := claims.Roles[0]
	if requested != "" {
		if !slices.Contains(claims.Roles, requested) {
			return actor.Actor{}, fmt.Errorf("token does not grant role %q", requested)
		}

		role = requested
	}

	a := actor.New(claims.Subject, actor.Role(role)).WithWallet(claims.Wallet)
	if !a.Valid() {
		return actor.Actor{}, fmt.Errorf("token subject or role %q is not valid", role)
	}

	return a, nil
}

// ActorFrom returns the actor stored by Middleware.
func ActorFrom(ctx context.Context) (actor.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(actor.Actor)
	return a, ok
}

// WithActor is used by tests that bypass the middleware.
func WithActor(ctx context.Context, a actor.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}
