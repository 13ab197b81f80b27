package server

import (
	"strings"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

// requireAuth resolves the Bearer token to a stored user and exposes the
// caller's identity to the handlers behind it.
func (api *TaskAPI) requireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			api.reject(ctx, unauthenticated())
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			api.reject(ctx, invalidToken(errors.ErrInvalidToken))
			return
		}

		claims, err := api.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			api.reject(ctx, invalidToken(err))
			return
		}

		user, err := api.users.GetUserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, errors.ErrUserNotFound) {
				api.reject(ctx, notFound(msgUserNotFound))
				return
			}
			api.reject(ctx, internalError(err))
			return
		}

		ctx.Set(identityKey, user.Identity())
		ctx.Next()
	}
}

// identityFrom returns the identity set by requireAuth.
func identityFrom(ctx *gin.Context) (models.Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
