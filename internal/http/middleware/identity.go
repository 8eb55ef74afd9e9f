package middleware

import (
	"context"
	"net/http"
)

// Actor is the authenticated caller as asserted by the auth gateway in
// front of this service. Authentication itself is out of scope here.
type Actor struct {
	ID   string
	Role string
}

// Roles recognized on incoming requests.
const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
	RoleCourier  = "courier"
)

type actorKey struct{}

// Identity extracts the caller identity from the X-User-Id and
// X-User-Role headers set by the gateway. Requests without an identity
// are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-Id")
		if id == "" {
			writeDenied(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		actor := Actor{ID: id, Role: r.Header.Get("X-User-Role")}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// RequireRole rejects callers whose role differs from the required one.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok || actor.Role != role {
				writeDenied(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeDenied(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// ActorFrom returns the caller identity stored by Identity.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
