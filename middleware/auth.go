package middleware

import (
	"context"
	"net/http"
	"strings"

	userRepo "homehub/database/repository/user"
	"homehub/models"
	"homehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// JWTAuthMiddleware authenticates the request and stores userID and
// role in the gin context. The token hash is checked against a Redis
// cache first; a miss falls back to the member record, which also
// catches tokens revoked by logout or password change.
func JWTAuthMiddleware(repo userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			// Browser WebSocket clients cannot set headers.
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + computedHash

		authCache := utils.GetAuthCacheClient()
		if authCache != nil {
			role, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil && role != "" {
				_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
				c.Set("userID", userID)
				c.Set("role", models.Role(role))
				c.Next()
				return
			}
			if err != nil && err != redis.Nil {
				utils.GetLogger().Warn("auth cache lookup failed, falling back to DB", zap.Error(err))
			}
		}

		proj := bson.M{"id": 1, "role": 1, "tokenHash": 1, "isBlocked": 1}
		u, err := repo.GetByIDWithProjection(userID, proj)
		if err != nil || u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication error"})
			return
		}
		if u.IsBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is blocked"})
			return
		}
		if u.TokenHash == "" || u.TokenHash != computedHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token mismatch"})
			return
		}

		if authCache != nil {
			_ = authCache.Set(ctx, cacheKey, string(u.Role), utils.AuthCacheTTL).Err()
		}

		c.Set("userID", userID)
		c.Set("role", u.Role)
		c.Next()
	}
}

// RequireAdmin gates a route group to ADMIN members. It must run after
// JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(models.Role) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// CurrentActor extracts the authenticated member from the gin context.
func CurrentActor(c *gin.Context) (string, models.Role) {
	userID := c.GetString("userID")
	role, _ := c.Get("role")
	r, _ := role.(models.Role)
	return userID, r
}
