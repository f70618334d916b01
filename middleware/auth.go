package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Habib-0007/habsblog-api/services"
	"github.com/Habib-0007/habsblog-api/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextRoleKey stores the authenticated user's role inside Gin context.
	ContextRoleKey = "role"
	// ContextTokenKey stores the raw bearer token inside Gin context.
	ContextTokenKey = "access_token"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			utils.Fail(ctx, http.StatusUnauthorized, "authorization header missing or malformed")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(token) {
			utils.Fail(ctx, http.StatusUnauthorized, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Fail(ctx, http.StatusUnauthorized, "invalid or expired token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextRoleKey, claims.Role)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// AuthOptional populates the actor identity when a valid bearer token is
// present and treats the request as anonymous otherwise.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token != "" && !utils.IsTokenBlacklisted(token) {
			if claims, err := utils.ParseToken(token); err == nil {
				ctx.Set(ContextUserIDKey, claims.UserID)
				ctx.Set(ContextRoleKey, claims.Role)
				ctx.Set(ContextTokenKey, token)
			}
		}
		ctx.Next()
	}
}

// ActorFrom builds the caller identity from the Gin context. Unauthenticated
// requests yield the zero Actor.
func ActorFrom(ctx *gin.Context) services.Actor {
	id, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return services.Actor{}
	}
	userID, ok := id.(uint)
	if !ok {
		return services.Actor{}
	}
	return services.Actor{ID: userID, Role: ctx.GetString(ContextRoleKey)}
}

func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
