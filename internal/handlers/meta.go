package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics events.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to the context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from the context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// MetaFromRequest builds request metadata from a plain HTTP request, for
// routes that bypass the huma middleware chain.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

// clientIP extracts the client IP, considering proxies.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
