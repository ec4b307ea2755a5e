package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-table/pkg/auth"
	"github.com/iamasit07/connect4-table/pkg/httputil"
)

const TableIDKey = "table_id"

// TableAuth admits only requests carrying a token issued for the :id table.
func TableAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing table token"})
			return
		}

		claims, err := auth.AuthorizeTable(secret, tokenString, c.Param("id"))
		if errors.Is(err, auth.ErrTableMismatch) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token belongs to another table"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid table token"})
			return
		}

		c.Set(TableIDKey, claims.TableID)
		c.Next()
	}
}
