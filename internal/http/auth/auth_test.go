package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/actor"
	"github.com/MrJamesThe3rd/titledeed/internal/http/auth"
)

const (
	secret = "test-secret"
	issuer = "titledeed-test"
)

func TestMiddleware(t *testing.T) {
	valid, err := auth.Issue(secret, issuer, "user-1", []actor.Role{actor.RoleBuyer, actor.RoleSeller}, "0xuser", time.Hour)
	require.NoError(t, err)

	expired, err := auth.Issue(secret, issuer, "user-1", []actor.Role{actor.RoleBuyer}, "", -time.Minute)
	require.NoError(t, err)

	foreign, err := auth.Issue("other-secret", issuer, "user-1", []actor.Role{actor.RoleBuyer}, "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		role       string
		wantStatus int
		wantActor  actor.Actor
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{
			name:       "first role by default",
			header:     "Bearer " + valid,
			wantStatus: http.StatusOK,
			wantActor:  actor.New("user-1", actor.RoleBuyer).WithWallet("0xuser"),
		},
		{
			name:       "acting role header",
			header:     "Bearer " + valid,
			role:       "seller",
			wantStatus: http.StatusOK,
			wantActor:  actor.New("user-1", actor.RoleSeller).WithWallet("0xuser"),
		},
		{name: "role not granted", header: "Bearer " + valid, role: "official", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got actor.Actor

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = auth.ActorFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if tt.role != "" {
				req.Header.Set(auth.RoleHeader, tt.role)
			}

			rec := httptest.NewRecorder()
			auth.Middleware(secret, issuer)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, got)
		})
	}
}
