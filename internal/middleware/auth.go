package middleware

import (
	"context"
	"innovation-portal/auth"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/workflow"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "user_id"
	ContextRoles  = "user_roles"
	ContextToken  = "jwt_token"
)

type UserProvider interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type Auth struct {
	UserService UserProvider
}

// AuthMiddleWare only trusts the Authorization header.
func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return m.authenticate(auth.BearerToken)
}

// StreamAuthMiddleWare is for the websocket route, where the token may come
// in the query string.
func (m *Auth) StreamAuthMiddleWare() gin.HandlerFunc {
	return m.authenticate(auth.StreamToken)
}

func (m *Auth) authenticate(extract func(*gin.Context) string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extract(ctx)
		if token == "" {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		parsedToken, err := auth.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}
		if auth.IsRefreshToken(parsedToken) {
			ctx.Error(errors.Unauthorized("Refresh token can't be used here!", nil))
			ctx.Abort()
			return
		}

		userID, tokenVersion, err := auth.GetDataFromToken(parsedToken)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		user, err := m.UserService.GetUserByID(ctx.Request.Context(), userID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid User ID!", err))
			ctx.Abort()
			return
		}

		if !user.IsActive {
			ctx.Error(errors.Unauthorized("User is not active!", nil))
			ctx.Abort()
			return
		}

		// Check token version
		if user.TokenVersion != tokenVersion {
			ctx.Error(errors.Unauthorized("Invalid token version!", nil))
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserID, userID)
		ctx.Set(ContextRoles, user.RoleNames())
		ctx.Set(ContextToken, token)
		ctx.Next()
	}
}

// RequirePermission aborts with 403 unless the authenticated actor holds p.
// Must run after AuthMiddleWare.
func RequirePermission(p workflow.Permission) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !CurrentActor(ctx).Can(p) {
			ctx.Error(errors.Forbidden("You don't have permission to do this!", nil))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func CurrentUserID(ctx *gin.Context) uint64 {
	id, _ := ctx.Get(ContextUserID)
	userID, _ := id.(uint64)
	return userID
}

// CurrentActor returns the authenticated user for the workflow gates.
func CurrentActor(ctx *gin.Context) workflow.Actor {
	roles, _ := ctx.Get(ContextRoles)
	names, _ := roles.([]string)
	return workflow.NewActor(CurrentUserID(ctx), names)
}
