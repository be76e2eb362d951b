package httpx

import "context"

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyToken    ctxKey = "token" // raw bearer token of the verified request
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	SubjectID   string
	SubjectName string
	Role        string
}

// IdentityFromContext returns the caller set by AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok
}

// BearerFromContext returns the raw bearer token set by AuthnMiddleware.
func BearerFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(CtxKeyToken).(string)
	return tok
}

func contextWithAuth(ctx context.Context, id Identity, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyIdentity, id)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}
