package middleware

import (
	"context"
	"net/http"
)

const headerActorID = "X-Actor-ID"

type actorCtxKey struct{}

// Actor is middleware that extracts the acting user (landlord or staff
// member, resolved upstream by the auth layer) from the X-Actor-ID header
// and stores it in the request context. Lifecycle operations take explicit
// actor IDs rather than relying on ambient session state; this middleware
// only carries the value for audit logging.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(headerActorID)
		ctx := context.WithValue(r.Context(), actorCtxKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the acting user ID stored in ctx, or "" if absent.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorCtxKey{}).(string)
	return actor
}
