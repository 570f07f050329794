package middleware

import (
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func extractToken(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware 有合法令牌时设置用户，否则以匿名身份继续
func TryAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			cfg := c.MustGet("config").(*config.Config)
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set("user", claims)
			}
		}
		c.Next()
	}
}

// RoleMiddleware 管理员拥有所有角色权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == model.RoleAdmin || user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateLastSeen(ctx context.Context, userID string) error
}

// ActivityMiddleware 拒绝已删除或被禁用的账号，并刷新最后活跃时间
func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			user, err := repo.FindByID(c.Request.Context(), claims.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Unauthorized(c)
				c.Abort()
				return
			}
			if err != nil {
				util.LogInternalError(c, err)
				c.Abort()
				return
			}
			if user.Disabled {
				util.Error(c, http.StatusForbidden, util.ErrUserDisabled.Error())
				c.Abort()
				return
			}

			// 异步更新，不阻塞主流程
			userID := claims.UserID
			go func() {
				if err := repo.UpdateLastSeen(context.Background(), userID); err != nil {
					logger.Log.Debug("Failed to update last seen", zap.String("user_id", userID), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
