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

type PaymentService interface {
	SubmitPayment(ctx context.Context, brand domain.User, applicationID uuid.UUID, submission domain.PaymentSubmission) (domain.PaymentSubmission, error)
	ReviewPayment(ctx context.Context, id uuid.UUID, decision domain.PaymentDecision, rejectionReason string, reviewer domain.User) (domain.PaymentSubmission, error)
	GetPayment(ctx context.Context, id uuid.UUID, actor domain.User) (domain.PaymentSubmission, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID, actor domain.User) ([]domain.PaymentSubmission, error)
	ListPendingByExhibition(ctx context.Context, exhibitionID uuid.UUID, reviewer domain.User) ([]domain.PaymentSubmission, error)
}

type PaymentHandler struct {
	svc  PaymentService
	uSvc UserService
}

func NewPaymentHandler(svc PaymentService, uSvc UserService) *PaymentHandler {
	return &PaymentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleSubmitPayment godoc
// @Summary      Submit a payment for an approved application
// @Description  Records the proof of payment and moves the application to payment_review. Only one submission may be under review at a time.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        applicationID  path      string                        true  "application ID"
// @Param        request        body      request.SubmitPaymentRequest  true  "payment details"
// @Success      201            {object}  domain.PaymentSubmission
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID}/payments [post]
// @Security     BearerAuth
func (h *PaymentHandler) HandleSubmitPayment(ctx *gin.Context) {
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

	var req request.SubmitPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	submission, err := h.svc.SubmitPayment(ctx.Request.Context(), user, applicationID, domain.PaymentSubmission{
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		Email:         req.Email,
		ProofFileURL:  req.ProofFileURL,
		Notes:         req.Notes,
	})
	if err != nil {
		h.renderPaymentErr(ctx, "v1.HandleSubmitPayment", applicationID, err)
		return
	}

	ctx.JSON(http.StatusCreated, submission)
}

// HandleReviewPayment godoc
// @Summary      Review a payment submission
// @Description  Approving books the stall; rejecting requires a reason and sends the application back to payment_pending.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        paymentID  path      string                        true  "payment submission ID"
// @Param        request    body      request.ReviewPaymentRequest  true  "review decision"
// @Success      200        {object}  domain.PaymentSubmission
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /payments/{paymentID}/review [post]
// @Security     BearerAuth
func (h *PaymentHandler) HandleReviewPayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	paymentID, respErr := parseUUIDParam(ctx, "paymentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReviewPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	decision := domain.PaymentDecisionApprove
	if req.Decision == "reject" {
		decision = domain.PaymentDecisionReject
	}

	submission, err := h.svc.ReviewPayment(ctx.Request.Context(), paymentID, decision, req.RejectionReason, user)
	if err != nil {
		h.renderPaymentErr(ctx, "v1.HandleReviewPayment", paymentID, err)
		return
	}

	ctx.JSON(http.StatusOK, submission)
}

// HandleGetPayment godoc
// @Summary      Get a payment submission by ID
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string  true  "payment submission ID"
// @Success      200        {object}  domain.PaymentSubmission
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /payments/{paymentID} [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleGetPayment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	paymentID, respErr := parseUUIDParam(ctx, "paymentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	submission, err := h.svc.GetPayment(ctx.Request.Context(), paymentID, user)
	if err != nil {
		h.renderPaymentErr(ctx, "v1.HandleGetPayment", paymentID, err)
		return
	}

	ctx.JSON(http.StatusOK, submission)
}

// HandleListByApplication godoc
// @Summary      List the payment submissions of an application
// @Tags         payments
// @Produce      json
// @Param        applicationID  path      string  true  "application ID"
// @Success      200            {array}   domain.PaymentSubmission
// @Failure      400            {object}  response.Err
// @Failure      403            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /applications/{applicationID}/payments [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleListByApplication(ctx *gin.Context) {
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

	submissions, err := h.svc.ListByApplication(ctx.Request.Context(), applicationID, user)
	if err != nil {
		h.renderPaymentErr(ctx, "v1.HandleListByApplication", applicationID, err)
		return
	}

	ctx.JSON(http.StatusOK, submissions)
}

// HandleListPending godoc
// @Summary      List payment submissions awaiting review
// @Tags         payments
// @Produce      json
// @Param        exhibitionID  path      string  true  "exhibition ID"
// @Success      200           {array}   domain.PaymentSubmission
// @Failure      400           {object}  response.Err
// @Failure      403           {object}  response.Err
// @Failure      500           {object}  response.Err
// @Router       /exhibitions/{exhibitionID}/payments/pending [get]
// @Security     BearerAuth
func (h *PaymentHandler) HandleListPending(ctx *gin.Context) {
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

	submissions, err := h.svc.ListPendingByExhibition(ctx.Request.Context(), exhibitionID, user)
	if err != nil {
		h.renderPaymentErr(ctx, "v1.HandleListPending", exhibitionID, err)
		return
	}

	ctx.JSON(http.StatusOK, submissions)
}

func (h *PaymentHandler) renderPaymentErr(ctx *gin.Context, op string, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.RenderErr(ctx, response.ErrNotFound("payment submission", "ID", id))
	case errors.Is(err, service.ErrApplicationNotFound):
		response.RenderErr(ctx, response.ErrNotFound("application", "ID", id))
	case errors.Is(err, service.ErrNotAuthorized):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrNonPositiveAmount),
		errors.Is(err, service.ErrRejectionReasonRequired):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrInvalidApplicationState),
		errors.Is(err, service.ErrStalePaymentStatus):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		err = fmt.Errorf("%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
