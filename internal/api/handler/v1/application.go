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

type ApplicationService interface {
	Apply(ctx context.Context, brand domain.User, instanceID uuid.UUID, message string) (domain.StallApplication, error)
	GetApplication(ctx context.Context, id uuid.UUID, actor domain.User) (domain.StallApplication, error)
	ListByExhibition(ctx context.Context, exhibitionID uuid.UUID, actor domain.User) ([]domain.StallApplication, error)
	ListMine(ctx context.Context, brandID uuid.UUID) ([]domain.StallApplication, error)
	ApproveForPayment(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error)
	Reject(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error)
	DeleteApplication(ctx context.Context, id uuid.UUID, actor domain.User) error
	BulkDecide(ctx context.Context, ids []uuid.UUID, approve bool, reviewer domain.User) ([]domain.BulkDecision, error)
	CancelBooking(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error)
	VoidPendingApplications(ctx context.Context, exhibitionID uuid.UUID, reviewer domain.User) ([]domain.BulkDecision, error)
}

type ApplicationHandler struct {
	svc  ApplicationService
	uSvc UserService
}

func NewApplicationHandler(svc ApplicationService, uSvc UserService) *ApplicationHandler {
	return &ApplicationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleApply godoc
// @Summary      Apply for a stall instance
// @Description  Claims the stall and creates the application atomically. Of two concurrent applications for the same stall, exactly one succeeds.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        instanceID  path      string                           true  "stall instance ID"
// @Param        request     body      request.CreateApplicationRequest true  "application details"
// @Success      201         {object}  domain.StallApplication
// @Failure      400         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /stall-instances/{instanceID}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleApply(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	instanceID, respErr := parseUUIDParam(ctx, "instanceID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	application, err := h.svc.Apply(ctx.Request.Context(), user, instanceID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStallInstanceNotFound):
			response.RenderErr(ctx, response.ErrNotFound("stall instance", "ID", instanceID))
		case errors.Is(err, service.ErrNotAuthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrStallUnavailable),
			errors.Is(err, service.ErrExhibitionClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleApply -> h.svc.Apply -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, application)
}

// HandleListMyApplications godoc
// @Summary      List the authenticated brand's applications
// @Tags         applications
// @Produce      json
// @Success      200  {array}   domain.StallApplication
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleListMyApplications(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	applications, err := h.svc.ListMine(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyApplications -> h.svc.ListMine -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, applications)
}

// HandleGetApplication godoc
// @Summary      Get an application by ID
// @Tags         applications
// @Produce      json
// @Param        applicationID  path      string  true  "application ID"
// @Success      200            {object}  domain.StallApplication
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleGetApplication(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	applicationID, respErr := parseUUIDParam(ctx, "applicationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	application, err := h.svc.GetApplication(ctx.Request.Context(), applicationID, user)
	if err != nil {
		h.renderApplicationErr(ctx, "v1.HandleGetApplication", applicationID, err)
		return
	}

	ctx.JSON(http.StatusOK, application)
}

// HandleListByExhibition godoc
// @Summary      List the applications of an exhibition
// @Tags         applications
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.StallApplication
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleListByExhibition(ctx *gin.Context) {
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

	applications, err := h.svc.ListByExhibition(ctx.Request.Context(), exhibitionID, user)
	if err != nil {
		h.renderApplicationErr(ctx, "v1.HandleListByExhibition", exhibitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, applications)
}

// HandleApprove godoc
// @Summary      Approve an application for payment
// @Description  Moves a pending application to payment_pending. The stall stays claimed but is not booked until payment clears.
// @Tags         applications
// @Produce      json
// @Param        applicationID  path      string  true  "application ID"
// @Success      200            {object}  domain.StallApplication
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID}/approve [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleApprove(ctx *gin.Context) {
	h.handleDecision(ctx, "v1.HandleApprove", h.svc.ApproveForPayment)
}

// HandleReject godoc
// @Summary      Reject a pending application
// @Description  Turns the application down and releases its stall back to available.
// @Tags         applications
// @Produce      json
// @Param        applicationID  path      string  true  "application ID"
// @Success      200            {object}  domain.StallApplication
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID}/reject [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleReject(ctx *gin.Context) {
	h.handleDecision(ctx, "v1.HandleReject", h.svc.Reject)
}

// HandleCancelBooking godoc
// @Summary      Cancel a booked application
// @Description  Privileged release of a booked stall. The application ends rejected and the stall returns to available.
// @Tags         applications
// @Produce      json
// @Param        applicationID  path      string  true  "application ID"
// @Success      200            {object}  domain.StallApplication
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID}/cancel-booking [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleCancelBooking(ctx *gin.Context) {
	h.handleDecision(ctx, "v1.HandleCancelBooking", h.svc.CancelBooking)
}

// HandleDelete godoc
// @Summary      Withdraw an application
// @Description  Removes the application. The claimed stall is released; a booked application cannot be deleted.
// @Tags         applications
// @Produce      json
// @Param        applicationID  path  string  true  "application ID"
// @Success      204
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleDelete(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	applicationID, respErr := parseUUIDParam(ctx, "applicationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteApplication(ctx.Request.Context(), applicationID, user); err != nil {
		h.renderApplicationErr(ctx, "v1.HandleDelete", applicationID, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleBulkDecide godoc
// @Summary      Approve or reject many applications at once
// @Description  Best effort. Each application succeeds or fails on its own; the response carries a per-row outcome.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        exhibitionID  path      string                       true  "exhibition ID"
// @Param        request       body      request.BulkDecisionRequest  true  "decision details"
// @Success      200           {array}   domain.BulkDecision
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/applications/bulk [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleBulkDecide(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BulkDecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	decisions, err := h.svc.BulkDecide(ctx.Request.Context(), req.ApplicationIDs, req.Decision == "approve", user)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("v1.HandleBulkDecide -> h.svc.BulkDecide -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, decisions)
}

// HandleVoidPending godoc
// @Summary      Void every pending application of an exhibition
// @Description  Force-rejects all non-terminal applications and releases their stalls.
// @Tags         applications
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.BulkDecision
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/applications/void-pending [post]
// @Security     BearerAuth
func (h *ApplicationHandler) HandleVoidPending(ctx *gin.Context) {
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

	decisions, err := h.svc.VoidPendingApplications(ctx.Request.Context(), exhibitionID, user)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("v1.HandleVoidPending -> h.svc.VoidPendingApplications -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, decisions)
}

func (h *ApplicationHandler) handleDecision(
	ctx *gin.Context,
	op string,
	decide func(ctx context.Context, id uuid.UUID, actor domain.User) (domain.StallApplication, error),
) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	applicationID, respErr := parseUUIDParam(ctx, "applicationID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	application, err := decide(ctx.Request.Context(), applicationID, user)
	if err != nil {
		h.renderApplicationErr(ctx, op, applicationID, err)
		return
	}

	ctx.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) renderApplicationErr(ctx *gin.Context, op string, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.RenderErr(ctx, response.ErrNotFound("application", "ID", id))
	case errors.Is(err, service.ErrNotAuthorized):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStaleApplicationStatus),
		errors.Is(err, service.ErrApplicationDeleteConflict):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		err = fmt.Errorf("%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
