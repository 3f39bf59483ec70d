package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"civictrack-be/utils"
)

const issueLimitWindow = 24 * time.Hour

// IssueRateLimiter caps how many issues one user may create per day. Each
// user gets a counter under prefix:<userId> that expires a day after the
// first attempt. A nil client disables the limit.
func IssueRateLimiter(client *redis.Client, prefix string, limit int, logger *zap.Logger) gin.HandlerFunc {
	if client == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			utils.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := c.Request.Context()
		userKey := prefix + ":" + userID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			logger.Error("redis error incrementing issue count", zap.String("key", userKey), zap.Error(err))
			utils.Abort(c, http.StatusInternalServerError, "Something went wrong")
			return
		}

		// first attempt of the window starts the clock
		if count == 1 {
			if err := client.Expire(ctx, userKey, issueLimitWindow).Err(); err != nil {
				logger.Error("redis error setting TTL", zap.String("key", userKey), zap.Error(err))
				utils.Abort(c, http.StatusInternalServerError, "Something went wrong")
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			seconds := int(retryAfter.Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.Response{
				Success: false,
				Message: "Daily issue limit reached, try again later",
				Data:    gin.H{"retry_after": seconds},
			})
			return
		}

		c.Next()
	}
}
