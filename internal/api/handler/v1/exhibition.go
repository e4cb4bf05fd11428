package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/api/handler/v1/request"
	"github.com/expofair/expofair-api/internal/api/handler/v1/response"
	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/service"
)

type ExhibitionService interface {
	CreateExhibition(ctx context.Context, exhibition domain.Exhibition, organiser domain.User) (domain.Exhibition, error)
	GetExhibition(ctx context.Context, id uuid.UUID) (domain.Exhibition, error)
	ListExhibitions(ctx context.Context) ([]domain.Exhibition, error)
	PublishExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error)
	CancelExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error)
	CompleteExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error)
}

type ExhibitionHandler struct {
	svc  ExhibitionService
	uSvc UserService
}

func NewExhibitionHandler(svc ExhibitionService, uSvc UserService) *ExhibitionHandler {
	return &ExhibitionHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateExhibition godoc
// @Summary      Create a new exhibition
// @Description  Creates a draft exhibition owned by the authenticated organiser.
// @Tags         exhibitions
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateExhibitionRequest  true  "exhibition details"
// @Success      201      {object}  domain.Exhibition
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /exhibitions [post]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandleCreateExhibition(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateExhibitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	exhibition, err := h.svc.CreateExhibition(ctx.Request.Context(), domain.Exhibition{
		Name:        req.Name,
		Venue:       req.Venue,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}, user)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateExhibition -> h.svc.CreateExhibition -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, exhibition)
}

// HandleListExhibitions godoc
// @Summary      List exhibitions
// @Tags         exhibitions
// @Produce      json
// @Success      200  {array}   domain.Exhibition
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /exhibitions [get]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandleListExhibitions(ctx *gin.Context) {
	exhibitions, err := h.svc.ListExhibitions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListExhibitions -> h.svc.ListExhibitions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, exhibitions)
}

// HandleGetExhibition godoc
// @Summary      Get an exhibition by ID
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      400           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID} [get]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandleGetExhibition(ctx *gin.Context) {
	exhibitionID, respErr := parseUUIDParam(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exhibition, err := h.svc.GetExhibition(ctx.Request.Context(), exhibitionID)
	if err != nil {
		if errors.Is(err, service.ErrExhibitionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("exhibition", "ID", exhibitionID))
			return
		}

		err = fmt.Errorf("v1.HandleGetExhibition -> h.svc.GetExhibition -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, exhibition)
}

// HandlePublishExhibition godoc
// @Summary      Publish a draft exhibition
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/publish [post]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandlePublishExhibition(ctx *gin.Context) {
	h.handleStatusChange(ctx, "v1.HandlePublishExhibition", h.svc.PublishExhibition)
}

// HandleCancelExhibition godoc
// @Summary      Cancel an exhibition
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/cancel [post]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandleCancelExhibition(ctx *gin.Context) {
	h.handleStatusChange(ctx, "v1.HandleCancelExhibition", h.svc.CancelExhibition)
}

// HandleCompleteExhibition godoc
// @Summary      Mark a published exhibition as completed
// @Tags         exhibitions
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {object}  domain.Exhibition
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/complete [post]
// @Security     BearerAuth
func (h *ExhibitionHandler) HandleCompleteExhibition(ctx *gin.Context) {
	h.handleStatusChange(ctx, "v1.HandleCompleteExhibition", h.svc.CompleteExhibition)
}

func (h *ExhibitionHandler) handleStatusChange(
	ctx *gin.Context,
	op string,
	change func(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error),
) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exhibitionID, respErr := parseUUIDParam(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	exhibition, err := change(ctx.Request.Context(), exhibitionID, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExhibitionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("exhibition", "ID", exhibitionID))
		case errors.Is(err, service.ErrNotAuthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrExhibitionClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("%v -> %w", op, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, exhibition)
}
