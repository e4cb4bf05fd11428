package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/expofair/expofair-api/docs"
	v1 "github.com/expofair/expofair-api/internal/api/handler/v1"
	"github.com/expofair/expofair-api/internal/api/middleware"
	"github.com/expofair/expofair-api/internal/config"
	"github.com/expofair/expofair-api/internal/notifier"
	"github.com/expofair/expofair-api/internal/repository"
	"github.com/expofair/expofair-api/internal/repository/dao"
	"github.com/expofair/expofair-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	hub := notifier.NewHub()
	go hub.Run()
	events := notifier.Multi{notifier.NewLogNotifier(), hub}

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	exhibitionHandler := s.initExhibitionHandler(db)
	stallHandler := s.initStallHandler(db)
	applicationHandler := s.initApplicationHandler(db, events)
	paymentHandler := s.initPaymentHandler(db, events)
	eventsHandler := v1.NewEventsHandler(hub, s.initUserService(db))

	s.MountHandlers(authHandler, userHandler, exhibitionHandler, stallHandler, applicationHandler, paymentHandler, eventsHandler)

	return s
}

func (s *Server) initUserService(db *gorm.DB) *service.UserService {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)

	return service.NewUserService(repo)
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	handler := v1.NewUserHandler(s.initUserService(db))

	return handler
}

func (s *Server) initExhibitionHandler(db *gorm.DB) *v1.ExhibitionHandler {
	exhibitionDAO := dao.NewExhibitionDAO(db)
	repo := repository.NewExhibitionRepository(exhibitionDAO)
	svc := service.NewExhibitionService(repo)
	handler := v1.NewExhibitionHandler(svc, s.initUserService(db))

	return handler
}

func (s *Server) initStallHandler(db *gorm.DB) *v1.StallHandler {
	stallDAO := dao.NewStallDAO(db)
	repo := repository.NewStallRepository(stallDAO)
	exhibitionRepo := repository.NewExhibitionRepository(dao.NewExhibitionDAO(db))
	svc := service.NewStallService(repo, exhibitionRepo)
	handler := v1.NewStallHandler(svc, s.initUserService(db))

	return handler
}

func (s *Server) initApplicationHandler(db *gorm.DB, events notifier.Notifier) *v1.ApplicationHandler {
	applicationDAO := dao.NewApplicationDAO(db)
	repo := repository.NewApplicationRepository(applicationDAO)
	stallRepo := repository.NewStallRepository(dao.NewStallDAO(db))
	exhibitionRepo := repository.NewExhibitionRepository(dao.NewExhibitionDAO(db))
	svc := service.NewApplicationService(repo, stallRepo, exhibitionRepo, events)
	handler := v1.NewApplicationHandler(svc, s.initUserService(db))

	return handler
}

func (s *Server) initPaymentHandler(db *gorm.DB, events notifier.Notifier) *v1.PaymentHandler {
	paymentDAO := dao.NewPaymentDAO(db)
	repo := repository.NewPaymentRepository(paymentDAO)
	applicationRepo := repository.NewApplicationRepository(dao.NewApplicationDAO(db))
	svc := service.NewPaymentService(repo, applicationRepo, events)
	handler := v1.NewPaymentHandler(svc, s.initUserService(db))

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS([]string{s.Config.API.AllowedCORSDomains}))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	exhibitionHandler *v1.ExhibitionHandler,
	stallHandler *v1.StallHandler,
	applicationHandler *v1.ApplicationHandler,
	paymentHandler *v1.PaymentHandler,
	eventsHandler *v1.EventsHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/:userID", userHandler.HandleGetUser)

		authed.GET("/exhibitions", exhibitionHandler.HandleListExhibitions)
		authed.POST("/exhibitions", exhibitionHandler.HandleCreateExhibition)
		authed.GET("/exhibitions/:exhibitionID", exhibitionHandler.HandleGetExhibition)
		authed.POST("/exhibitions/:exhibitionID/publish", exhibitionHandler.HandlePublishExhibition)
		authed.POST("/exhibitions/:exhibitionID/cancel", exhibitionHandler.HandleCancelExhibition)
		authed.POST("/exhibitions/:exhibitionID/complete", exhibitionHandler.HandleCompleteExhibition)

		authed.GET("/exhibitions/:exhibitionID/stall-types", stallHandler.HandleListStallTypes)
		authed.POST("/exhibitions/:exhibitionID/stall-types", stallHandler.HandleCreateStallType)
		authed.GET("/stall-types/:stallTypeID", stallHandler.HandleGetStallType)
		authed.PUT("/stall-types/:stallTypeID", stallHandler.HandleUpdateStallType)
		authed.DELETE("/stall-types/:stallTypeID", stallHandler.HandleDeleteStallType)

		authed.POST("/exhibitions/:exhibitionID/layout/generate", stallHandler.HandleGenerateLayout)
		authed.GET("/exhibitions/:exhibitionID/stall-instances", stallHandler.HandleListInstances)
		authed.GET("/stall-instances/:instanceID", stallHandler.HandleGetInstance)

		authed.POST("/stall-instances/:instanceID/apply", applicationHandler.HandleApply)
		authed.GET("/applications", applicationHandler.HandleListMyApplications)
		authed.GET("/applications/:applicationID", applicationHandler.HandleGetApplication)
		authed.DELETE("/applications/:applicationID", applicationHandler.HandleDelete)
		authed.POST("/applications/:applicationID/approve", applicationHandler.HandleApprove)
		authed.POST("/applications/:applicationID/reject", applicationHandler.HandleReject)
		authed.POST("/applications/:applicationID/cancel-booking", applicationHandler.HandleCancelBooking)
		authed.GET("/exhibitions/:exhibitionID/applications", applicationHandler.HandleListByExhibition)
		authed.POST("/exhibitions/:exhibitionID/applications/bulk", applicationHandler.HandleBulkDecide)
		authed.POST("/exhibitions/:exhibitionID/applications/void-pending", applicationHandler.HandleVoidPending)

		authed.POST("/applications/:applicationID/payments", paymentHandler.HandleSubmitPayment)
		authed.GET("/applications/:applicationID/payments", paymentHandler.HandleListByApplication)
		authed.GET("/payments/:paymentID", paymentHandler.HandleGetPayment)
		authed.POST("/payments/:paymentID/review", paymentHandler.HandleReviewPayment)
		authed.GET("/exhibitions/:exhibitionID/payments/pending", paymentHandler.HandleListPending)

		authed.GET("/events", eventsHandler.HandleEventsFeed)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "ExpoFair API"
	docs.SwaggerInfo.Description = "Stall inventory and booking API for exhibitions."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
