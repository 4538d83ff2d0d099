package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cfctx "github.com/yeisme/casefile/pkg/context"
	"github.com/yeisme/casefile/pkg/internal/model"
)

// 角色等级，数值越大权限越高.
var roleRank = map[model.AccessRole]int{
	model.RoleViewer: 1,
	model.RoleEditor: 2,
	model.RoleAdmin:  3,
	model.RoleOwner:  4,
}

// parseRole 未知或缺失的角色降级为 viewer.
func parseRole(s string) model.AccessRole {
	r := model.AccessRole(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return model.RoleViewer
	}

	return r
}

// GetRole 返回当前请求的角色.
func GetRole(c *gin.Context) model.AccessRole {
	return parseRole(cfctx.GetUserRole(c.Request.Context()))
}

// RequireMinRole 要求最低角色，不满足返回 403.
func RequireMinRole(minRole model.AccessRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if roleRank[GetRole(c)] < roleRank[minRole] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden: insufficient role"})
			return
		}

		c.Next()
	}
}
