package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
)

// CheckRateLimit counts a hit for id on resource in a fixed window.
// It reports whether the hit is still within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(limit), nil
}

// RateLimit limits requests per client IP. When Redis is unavailable the
// request goes through.
func RateLimit(rdb *redis.Client, resource string, limit int, window time.Duration, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := CheckRateLimit(c.Request.Context(), rdb, resource, "ip:"+c.ClientIP(), limit, window)
		if err != nil {
			log.Warn("Rate limit check failed, allowing request", zap.String("resource", resource), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.Error(apperror.NewTooManyRequests(fmt.Sprintf("at most %d requests per %s", limit, window)))
			c.Abort()
			return
		}
		c.Next()
	}
}
