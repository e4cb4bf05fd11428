package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofair/expofair-api/internal/api/middleware"
	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/service"
)

type stubUserService struct {
	user domain.User
}

func (s *stubUserService) GetUser(_ context.Context, _ uuid.UUID) (domain.User, error) {
	return s.user, nil
}

type stubApplicationService struct {
	ApplicationService

	applyFn   func(ctx context.Context, brand domain.User, instanceID uuid.UUID, message string) (domain.StallApplication, error)
	approveFn func(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error)
}

func (s *stubApplicationService) Apply(ctx context.Context, brand domain.User, instanceID uuid.UUID, message string) (domain.StallApplication, error) {
	return s.applyFn(ctx, brand, instanceID, message)
}

func (s *stubApplicationService) ApproveForPayment(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error) {
	return s.approveFn(ctx, id, reviewer)
}

func newApplicationRouter(user domain.User, svc ApplicationService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, user.ID)
	})

	handler := NewApplicationHandler(svc, &stubUserService{user: user})
	router.POST("/stall-instances/:instanceID/apply", handler.HandleApply)
	router.POST("/applications/:applicationID/approve", handler.HandleApprove)

	return router
}

func TestHandleApply(t *testing.T) {
	brand := domain.User{ID: uuid.New(), Role: domain.RoleBrand}
	instanceID := uuid.New()

	svc := &stubApplicationService{
		applyFn: func(_ context.Context, user domain.User, id uuid.UUID, message string) (domain.StallApplication, error) {
			assert.Equal(t, brand.ID, user.ID)
			assert.Equal(t, instanceID, id)
			assert.Equal(t, "please", message)

			return domain.StallApplication{
				ID:              uuid.New(),
				StallInstanceID: id,
				BrandID:         user.ID,
				Status:          domain.ApplicationPending,
			}, nil
		},
	}
	router := newApplicationRouter(brand, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stall-instances/"+instanceID.String()+"/apply",
		strings.NewReader(`{"message":"please"}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var got domain.StallApplication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.ApplicationPending, got.Status)
	assert.Equal(t, instanceID, got.StallInstanceID)
}

func TestHandleApply_StallUnavailable(t *testing.T) {
	brand := domain.User{ID: uuid.New(), Role: domain.RoleBrand}

	svc := &stubApplicationService{
		applyFn: func(_ context.Context, _ domain.User, _ uuid.UUID, _ string) (domain.StallApplication, error) {
			return domain.StallApplication{}, service.ErrStallUnavailable
		},
	}
	router := newApplicationRouter(brand, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stall-instances/"+uuid.NewString()+"/apply",
		strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "no longer available")
}

func TestHandleApply_InvalidID(t *testing.T) {
	brand := domain.User{ID: uuid.New(), Role: domain.RoleBrand}
	router := newApplicationRouter(brand, &stubApplicationService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stall-instances/not-a-uuid/apply",
		strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleApprove_ErrorMapping(t *testing.T) {
	organiser := domain.User{ID: uuid.New(), Role: domain.RoleOrganiser}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", service.ErrApplicationNotFound, http.StatusNotFound},
		{"not authorized", service.ErrNotAuthorized, http.StatusForbidden},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict},
		{"stale status", service.ErrStaleApplicationStatus, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubApplicationService{
				approveFn: func(_ context.Context, _ uuid.UUID, _ domain.User) (domain.StallApplication, error) {
					return domain.StallApplication{}, tc.err
				},
			}
			router := newApplicationRouter(organiser, svc)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/applications/"+uuid.NewString()+"/approve", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
		})
	}
}
