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
	"github.com/expofair/expofair-api/internal/layout"
	"github.com/expofair/expofair-api/internal/service"
)

type StallService interface {
	CreateStallType(ctx context.Context, stallType domain.StallType, actor domain.User) (domain.StallType, error)
	UpdateStallType(ctx context.Context, stallType domain.StallType, actor domain.User) (domain.StallType, error)
	DeleteStallType(ctx context.Context, id uuid.UUID, actor domain.User) error
	GetStallType(ctx context.Context, id uuid.UUID) (domain.StallType, error)
	ListStallTypes(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallType, error)
	GenerateLayout(ctx context.Context, exhibitionID uuid.UUID, actor domain.User) ([]domain.StallListing, error)
	ListInstances(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallListing, error)
	GetInstance(ctx context.Context, id uuid.UUID) (domain.StallListing, error)
}

type StallHandler struct {
	svc  StallService
	uSvc UserService
}

func NewStallHandler(svc StallService, uSvc UserService) *StallHandler {
	return &StallHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateStallType godoc
// @Summary      Create a stall type
// @Description  Adds a stall type template to an exhibition. Instances are produced by layout generation.
// @Tags         stall-types
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      string                    true  "exhibition ID"
// @Param        request       body      request.StallTypeRequest  true  "stall type details"
// @Success      201           {object}  domain.StallType
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/stall-types [post]
// @Security     BearerAuth
func (h *StallHandler) HandleCreateStallType(ctx *gin.Context) {
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

	var req request.StallTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateStallType(ctx.Request.Context(), stallTypeFromRequest(req, exhibitionID, uuid.Nil), user)
	if err != nil {
		h.renderStallErr(ctx, "v1.HandleCreateStallType", exhibitionID, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListStallTypes godoc
// @Summary      List the stall types of an exhibition
// @Tags         stall-types
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.StallType
// @Failure      400           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/stall-types [get]
// @Security     BearerAuth
func (h *StallHandler) HandleListStallTypes(ctx *gin.Context) {
	exhibitionID, respErr := parseUUIDParam(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallTypes, err := h.svc.ListStallTypes(ctx.Request.Context(), exhibitionID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListStallTypes -> h.svc.ListStallTypes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stallTypes)
}

// HandleGetStallType godoc
// @Summary      Get a stall type by ID
// @Tags         stall-types
// @Produce      json
// @Param        stallTypeID  path      string  true  "stall type ID"
// @Success      200          {object}  domain.StallType
// @Failure      400          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [get]
// @Security     BearerAuth
func (h *StallHandler) HandleGetStallType(ctx *gin.Context) {
	stallTypeID, respErr := parseUUIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallType, err := h.svc.GetStallType(ctx.Request.Context(), stallTypeID)
	if err != nil {
		if errors.Is(err, service.ErrStallTypeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("stall type", "ID", stallTypeID))
			return
		}

		err = fmt.Errorf("v1.HandleGetStallType -> h.svc.GetStallType -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stallType)
}

// HandleUpdateStallType godoc
// @Summary      Update a stall type
// @Description  Edits the template. A quantity change takes effect on the next layout generation.
// @Tags         stall-types
// @Accept       json
// @Produce      json
// @Param        stallTypeID  path      string                    true  "stall type ID"
// @Param        request      body      request.StallTypeRequest  true  "stall type details"
// @Success      200          {object}  domain.StallType
// @Failure      400          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      409          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [put]
// @Security     BearerAuth
func (h *StallHandler) HandleUpdateStallType(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallTypeID, respErr := parseUUIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StallTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateStallType(ctx.Request.Context(), stallTypeFromRequest(req, uuid.Nil, stallTypeID), user)
	if err != nil {
		h.renderStallErr(ctx, "v1.HandleUpdateStallType", stallTypeID, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteStallType godoc
// @Summary      Delete a stall type
// @Description  Removes the template and its available instances. Refused while any instance is claimed or booked.
// @Tags         stall-types
// @Produce      json
// @Param        stallTypeID  path  string  true  "stall type ID"
// @Success      204
// @Failure      400          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      404          {object}  response.Err
// @Failure      409          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /stall-types/{stallTypeID} [delete]
// @Security     BearerAuth
func (h *StallHandler) HandleDeleteStallType(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stallTypeID, respErr := parseUUIDParam(ctx, "stallTypeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteStallType(ctx.Request.Context(), stallTypeID, user); err != nil {
		h.renderStallErr(ctx, "v1.HandleDeleteStallType", stallTypeID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGenerateLayout godoc
// @Summary      Generate the exhibition layout
// @Description  Regenerates the floor plan from stall type quantities. Claimed and booked stalls keep their numbers and positions.
// @Tags         stall-types
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.StallListing
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      404           {object}  response.Err
// @Failure      409           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/layout/generate [post]
// @Security     BearerAuth
func (h *StallHandler) HandleGenerateLayout(ctx *gin.Context) {
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

	listings, err := h.svc.GenerateLayout(ctx.Request.Context(), exhibitionID, user)
	if err != nil {
		h.renderStallErr(ctx, "v1.HandleGenerateLayout", exhibitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, listings)
}

// HandleListInstances godoc
// @Summary      List the stall instances of an exhibition
// @Description  Returns every instance with its resolved effective price.
// @Tags         stall-instances
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.StallListing
// @Failure      400           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/stall-instances [get]
// @Security     BearerAuth
func (h *StallHandler) HandleListInstances(ctx *gin.Context) {
	exhibitionID, respErr := parseUUIDParam(ctx, "exhibitionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	listings, err := h.svc.ListInstances(ctx.Request.Context(), exhibitionID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListInstances -> h.svc.ListInstances -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, listings)
}

// HandleGetInstance godoc
// @Summary      Get a stall instance by ID
// @Tags         stall-instances
// @Produce      json
// @Param        instanceID  path      string  true  "stall instance ID"
// @Success      200         {object}  domain.StallListing
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stall-instances/{instanceID} [get]
// @Security     BearerAuth
func (h *StallHandler) HandleGetInstance(ctx *gin.Context) {
	instanceID, respErr := parseUUIDParam(ctx, "instanceID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	listing, err := h.svc.GetInstance(ctx.Request.Context(), instanceID)
	if err != nil {
		if errors.Is(err, service.ErrStallInstanceNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("stall instance", "ID", instanceID))
			return
		}

		err = fmt.Errorf("v1.HandleGetInstance -> h.svc.GetInstance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, listing)
}

func (h *StallHandler) renderStallErr(ctx *gin.Context, op string, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, service.ErrExhibitionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("exhibition", "ID", id))
	case errors.Is(err, service.ErrStallTypeNotFound):
		response.RenderErr(ctx, response.ErrNotFound("stall type", "ID", id))
	case errors.Is(err, service.ErrNotAuthorized):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrExhibitionClosed),
		errors.Is(err, service.ErrStallTypeHasClaims):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrUnknownUnit),
		errors.Is(err, service.ErrUnknownAmenity),
		errors.Is(err, layout.ErrTooManyInstances),
		errors.Is(err, layout.ErrQuantityTooLow),
		errors.Is(err, layout.ErrInvalidQuantity),
		errors.Is(err, layout.ErrDuplicatePinned):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func stallTypeFromRequest(req request.StallTypeRequest, exhibitionID, stallTypeID uuid.UUID) domain.StallType {
	amenities := make([]domain.Amenity, len(req.AmenityIDs))
	for i, id := range req.AmenityIDs {
		amenities[i] = domain.Amenity{ID: id}
	}

	return domain.StallType{
		ID:           stallTypeID,
		ExhibitionID: exhibitionID,
		Name:         req.Name,
		Length:       req.Length,
		Width:        req.Width,
		UnitID:       req.UnitID,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Amenities:    amenities,
	}
}
