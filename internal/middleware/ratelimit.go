package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a huma middleware that throttles requests per client.
// Endpoints can override or disable the default limiter via operation
// metadata under ratelimit.MetadataKey.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.SlidingWindowLimiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil {
			if cfg.Disabled {
				next(ctx)

				return
			}

			if len(cfg.Limits) > 0 {
				if !checkEndpointLimits(api, ctx, limiter.Store(), cfg.Limits, logger) {
					return
				}

				next(ctx)

				return
			}
		}

		allowed, err := limiter.Allow(ctx.Context(), clientKey(ctx))
		if err != nil {
			logger.Error("rate limit check failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "server error")

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// checkEndpointLimits applies the per-endpoint limits from operation
// metadata. The key combines client, route template, and window so all
// requests matching a route share counters per client. Returns false when
// the request was rejected.
func checkEndpointLimits(
	api huma.API,
	ctx huma.Context,
	store ratelimit.Store,
	limits []ratelimit.LimitConfig,
	logger *zap.Logger,
) bool {
	client := clientKey(ctx)

	path := ""
	if op := ctx.Operation(); op != nil {
		path = op.Path
	}

	for _, limit := range limits {
		key := fmt.Sprintf("%s:%s:%d", client, path, limit.Window.Milliseconds())

		count, err := store.Record(ctx.Context(), key, limit.Window)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("path", path),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "server error")

			return false
		}

		if count > limit.Max {
			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.Int64("count", count),
				zap.Int64("max", limit.Max),
				zap.Duration("window", limit.Window),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return false
		}
	}

	return true
}

// clientKey generates a rate limiting key from the client IP and
// User-Agent.
func clientKey(ctx huma.Context) string {
	ip := extractClientIP(ctx)
	ua := ctx.Header("User-Agent")

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}
