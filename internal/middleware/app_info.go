package middleware

import (
	"github.com/gin-gonic/gin"
)

// AppInfo 在上下文中写入应用名称与版本
func AppInfo(name, version string) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)

		c.Next()
	}
}
