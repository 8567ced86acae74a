package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NoFound 未匹配路由的统一处理
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"status":  false,
			"message": "resource not found",
		})
	}
}
