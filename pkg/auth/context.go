package auth

import "context"

type actorKey struct{}

// Actor is the authenticated caller attached to a request context.
type Actor struct {
	UserID    int64
	Role      Role
	SessionID int64
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// WithActor stores the caller on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller stored on ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
