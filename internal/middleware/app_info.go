package middleware

import (
	"github.com/astralvault/page-sync-service/global"

	"github.com/gin-gonic/gin"
)

// AppInfo 注入应用标识信息
func AppInfo(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", global.Name)
		c.Set("app_version", version)

		c.Next()
	}
}
