package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware 允许前端携带身份头跨域访问.
func CORSMiddleware() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-User", "X-User-Role", "If-None-Match")
	config.AllowMethods = append(config.AllowMethods, "PATCH")
	config.ExposeHeaders = []string{"ETag", "Content-Disposition"}

	return cors.New(config)
}
