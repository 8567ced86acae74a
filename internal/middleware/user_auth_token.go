package middleware

import (
	"github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// UserAuthToken 用户 Token 认证中间件（使用注入的密钥）
func UserAuthToken(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := app.GetTokenFromRequest(c)
		if token == "" {
			response.ToResponse(code.ErrorNotUserAuthToken)
			c.Abort()
			return
		}

		user, err := app.ParseTokenWithKey(token, secretKey)
		if err != nil {
			response.ToResponse(code.ErrorInvalidUserAuthToken)
			c.Abort()
			return
		}
		c.Set("user_token", user)

		c.Next()
	}
}
