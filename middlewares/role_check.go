package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/utils"
)

// RequireRoles lets the request through only when the authenticated role is
// one of roles. It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.AbortWithError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			return
		}

		if name, _ := role.(string); !allowed[name] {
			utils.AbortWithError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.Join(roles, " or ")))
			return
		}

		c.Next()
	}
}
