package engine

import "context"

type actorKey struct{}

// ContextWithActor attaches the authenticated username behind a
// command-channel request to ctx, so the command's event-log entry
// (SPEC_FULL §7) can record who issued it. The HTTP layer sets this
// after bearer-token auth succeeds; commands dispatched without it
// (the schedule runner's own tick, tests) simply record no actor.
func ContextWithActor(ctx context.Context, username string) context.Context {
	if username == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, username)
}

func actorFromContext(ctx context.Context) string {
	username, _ := ctx.Value(actorKey{}).(string)
	return username
}
