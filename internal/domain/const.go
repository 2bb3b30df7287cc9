package domain

type ctxKey string

// ActorCtxKey carries the authenticated Actor through request contexts.
const ActorCtxKey ctxKey = "shiftdesk-actor"
