package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/ratelimit"
)

const msgRateLimited = "Too many requests. Please try again later."

// NewRateLimiter allows ratePerInterval requests per interval per client,
// with bursts up to burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *ratelimit.KeyedRateLimiter {
	return ratelimit.PerInterval(ratePerInterval, interval, burst)
}

// rateLimited is a huma operation middleware that throttles by client IP
// using the server's auth limiter.
func (s *Server) rateLimited(ctx huma.Context, next func(huma.Context)) {
	if s.authRateLimiter == nil {
		next(ctx)
		return
	}

	ip := clientIP(ctx.Header, ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("rate limit exceeded", "ip", ip, "path", ctx.URL().Path)
		ctx.SetHeader("Retry-After", "60")
		huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, msgRateLimited)
		return
	}
	next(ctx)
}

// clientIP prefers proxy headers and falls back to the connection address.
func clientIP(header func(string) string, remoteAddr string) string {
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
