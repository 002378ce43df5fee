package identity

import (
	"net/http"
	"strings"

	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextClaims is the key used to store token claims in the Gin context.
	ContextClaims = "tokenClaims"

	// QueryToken carries the token for clients that cannot set headers, like
	// browser websockets.
	QueryToken = "token"
)

// Authoriz rejects requests without a valid token and stores its claims in
// the context.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed token"})
			return
		}

		claims, err := ts.Decode(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		t := c.Query(QueryToken)
		return t, t != ""
	}

	// Split the "Bearer" prefix from the token.
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Claims returns the claims stored by Authoriz.
func Claims(c *gin.Context) map[string]interface{} {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(map[string]interface{})
	return claims
}
