package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken reads the token from the Authorization header.
func BearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// StreamToken also accepts the token query parameter, since browsers cannot
// set headers on a websocket handshake.
func StreamToken(ctx *gin.Context) string {
	if token := BearerToken(ctx); token != "" {
		return token
	}
	return ctx.Query("token")
}
