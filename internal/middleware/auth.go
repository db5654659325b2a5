package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/auth"
)

// TokenVerifier validates a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticator returns a huma middleware that gates operations marked with
// auth.MetadataKey. Unmarked operations pass through untouched. Failures
// are a bare 401 that leaks neither token details nor resource existence.
func Authenticator(api huma.API, verifier TokenVerifier) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !operationProtected(ctx) {
			next(ctx)

			return
		}

		token, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")

			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")

			return
		}

		ctx = huma.WithContext(ctx, auth.ContextWithPrincipal(ctx.Context(), principal))

		next(ctx)
	}
}

func operationProtected(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	protected, ok := op.Metadata[auth.MetadataKey].(bool)

	return ok && protected
}

func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}
