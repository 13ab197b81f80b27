package server

import (
	"net/http"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (api *TaskAPI) bind(ctx *gin.Context, req any) (result, bool) {
	if err := ctx.ShouldBindBodyWith(req, binding.JSON); err != nil {
		return invalid(msgInvalidBody), false
	}
	if err := api.validate.Struct(req); err != nil {
		return invalid(validationMessage(err)), false
	}
	return result{}, true
}

func (api *TaskAPI) register(ctx *gin.Context) result {
	var req models.RegisterRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	hash, err := api.hasher.Hash(req.Password)
	if err != nil {
		return internalError(err)
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := api.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, errors.ErrUserAlreadyExists) {
			return invalid(msgEmailInUse)
		}
		return internalError(err)
	}

	return success(http.StatusCreated, gin.H{
		"message": "User added successfully",
		"user":    user,
	})
}

// login answers an unknown email and a wrong password identically, so the
// endpoint cannot be used to probe for accounts.
func (api *TaskAPI) login(ctx *gin.Context) result {
	var req models.LoginRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	user, err := api.users.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, errors.ErrUserNotFound) {
			return internalError(err)
		}
		api.hasher.Verify(req.Password, api.dummyHash)
		return invalid(msgInvalidCredentials)
	}

	if !api.hasher.Verify(req.Password, user.PasswordHash) {
		return invalid(msgInvalidCredentials)
	}

	token, err := api.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return internalError(err)
	}

	return success(http.StatusCreated, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

func (api *TaskAPI) forgotPassword(ctx *gin.Context) result {
	var req models.ForgotPasswordRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	if _, err := api.users.GetUserByEmail(ctx.Request.Context(), req.Email); err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return notFound(msgUserNotFound).withStatus(http.StatusBadRequest)
		}
		return internalError(err)
	}

	return success(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (api *TaskAPI) resetPassword(ctx *gin.Context) result {
	var req models.ResetPasswordRequest
	if r, ok := api.bind(ctx, &req); !ok {
		return r
	}

	hash, err := api.hasher.Hash(req.Password)
	if err != nil {
		return internalError(err)
	}

	if err := api.users.UpdatePassword(ctx.Request.Context(), req.Email, hash); err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return notFound(msgUserNotFound).withStatus(http.StatusBadRequest)
		}
		return internalError(err)
	}

	return success(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (api *TaskAPI) profile(ctx *gin.Context) result {
	identity, ok := identityFrom(ctx)
	if !ok {
		return unauthenticated()
	}
	return success(http.StatusOK, gin.H{
		"message": "Welcome to your profile!",
		"user":    identity,
	})
}
