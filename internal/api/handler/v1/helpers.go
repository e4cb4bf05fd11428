package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/api/handler/v1/response"
	"github.com/expofair/expofair-api/internal/api/middleware"
	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/service"
)

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	raw, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("user is not authenticated"))
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("user is not authenticated"))
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrNotFound("user", "ID", userID)
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> %w", err))
	}

	return user, nil
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, *response.Err) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, response.ErrBadRequest(fmt.Errorf("invalid %v", name))
	}

	return id, nil
}
