package middleware

import (
	"credit-engine/internal/config"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	unknownIP           = "unknown"
	limiterCleanupEvery = 10 * time.Minute
)

// RateLimiterMiddleware counts requests per client IP. With a Redis client the
// count is shared across instances in fixed one second windows; without one
// every instance keeps its own token bucket per IP.
type RateLimiterMiddleware struct {
	redisClient *redis.Client
	limiters    sync.Map
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	window      time.Duration
}

func NewRateLimiterMiddleware(
	cfg config.RateLimitConfig,
	redisClient *redis.Client,
	logger *slog.Logger,
) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger.With("component", "rateLimiter"),
		window:      1 * time.Second,
	}

	switch {
	case !cfg.Enabled:
		rl.logger.Info("Rate limiting is disabled via configuration.")
	case redisClient == nil:
		rl.logger.Info("Rate limiter using in-process token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
		go rl.cleanupLimiters()
	default:
		rl.logger.Info("Rate limiter using Redis counters", "limit", rl.windowLimit(), "window", rl.window)
	}

	return rl
}

func (rl *RateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled
}

func (rl *RateLimiterMiddleware) windowLimit() int64 {
	limit := int64(rl.cfg.RPS)
	if limit < 1 {
		return 1
	}
	return limit
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		rl.limiters.Range(func(key, value any) bool {
			limiter := value.(*rate.Limiter)
			if limiter.Tokens() >= float64(rl.cfg.Burst) {
				rl.limiters.Delete(key)
			}
			return true
		})
	}
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := r.Header.Get("X-Real-IP")
	if xRealIP != "" {
		ip := strings.TrimSpace(xRealIP)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return ip
	}

	parsedIP := net.ParseIP(r.RemoteAddr)
	if parsedIP != nil {
		return parsedIP.String()
	}

	rl.logger.Warn("Could not determine client IP for rate limiting", "remoteAddr", r.RemoteAddr, "x-forwarded-for", xff, "x-real-ip", xRealIP)
	return unknownIP
}

// allowRedis fails open: a Redis error lets the request through.
func (rl *RateLimiterMiddleware) allowRedis(r *http.Request, ip string) bool {
	ctx := r.Context()
	key := fmt.Sprintf("ratelimit:%s", ip)

	pipe := rl.redisClient.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.ErrorContext(ctx, "Redis pipeline failed during rate limiting check", "error", err, "ip", ip, "key", key)
		return true
	}

	currentCount, errIncr := incrCmd.Result()
	if errIncr != nil {
		rl.logger.ErrorContext(ctx, "Failed to get INCR result after pipeline exec", "error", errIncr, "ip", ip, "key", key)
		return true
	}
	ttl, errTTL := ttlCmd.Result()
	if errTTL != nil {
		rl.logger.ErrorContext(ctx, "Failed to get TTL result after pipeline exec", "error", errTTL, "ip", ip, "key", key)
	}

	if ttl == -1 || ttl == -2 {
		if err := rl.redisClient.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.ErrorContext(ctx, "Failed to set Redis EXPIRE for rate limit key", "error", err, "ip", ip, "key", key)
		}
	}

	return currentCount <= rl.windowLimit()
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		if ip == unknownIP {
			rl.logger.Error("Blocking request due to unknown client IP for rate limiting")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var allowed bool
		if rl.redisClient != nil {
			allowed = rl.allowRedis(r, ip)
		} else {
			allowed = rl.getLimiter(ip).Allow()
		}

		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
