package httpx

import (
	"context"

	"github.com/quokkaworks/ident/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromContext returns the authenticated subject id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// RoleFromContext returns the authenticated caller's role string, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyRole).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the full validated claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}
