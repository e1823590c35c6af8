package api

import (
	approvalHandlers "backend/api/handlers/approvals"
	budgetHandlers "backend/api/handlers/budget"
	orgHandlers "backend/api/handlers/organization"
	procurementHandlers "backend/api/handlers/procurement"

	"backend/internal/approval"
	"backend/internal/auth"
	budgetSvc "backend/internal/budget"
	"backend/internal/config"
	"backend/internal/infra"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/notification"
	orgSvc "backend/internal/organization"
	procurementSvc "backend/internal/procurement"
	"backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppContainer holds the wired application services shared by the HTTP
// layer and the background worker.
type AppContainer struct {
	Engine       *approval.Engine
	Resolver     *approval.Resolver
	SchemaStore  *approval.SchemaStore
	Instantiator *approval.Instantiator
	Organization *orgSvc.Service
	Budget       *budgetSvc.Service
	Procurement  *procurementSvc.Service
	JWTService   *auth.JWTService
	Notifier     notification.Notifier
}

// Handlers groups the HTTP handlers for route registration.
type Handlers struct {
	Auth     *orgHandlers.AuthHandler
	Org      *orgHandlers.OrgHandler
	Budget   *budgetHandlers.Handler
	Schema   *approvalHandlers.SchemaHandler
	Approval *approvalHandlers.ApprovalHandler
	Request  *procurementHandlers.RequestHandler
	Order    *procurementHandlers.OrderHandler
}

// BuildContainer wires services onto the database and redis connections.
func BuildContainer(db *gorm.DB, cfg *config.Config) *AppContainer {
	notifier := notification.NewMultiNotifier(&cfg.Notification)

	engine := approval.NewEngine(db,
		approval.WithNotifier(notifier),
		approval.WithStatusWriter(procurementSvc.StatusWriter{}),
		approval.WithEngineLogger(logger.Get()),
	)
	resolver := approval.NewResolver(db, engine,
		approval.WithResolverNotifier(notifier),
		approval.WithResolverLogger(logger.Get()),
	)

	schemaStore := approval.NewSchemaStore(db)
	instantiator := approval.NewInstantiator(db)

	organizationService := orgSvc.NewService(db)
	budgetService := budgetSvc.NewService(db)
	procurementService := procurementSvc.NewService(db, engine, instantiator, schemaStore)

	// The typed-nil check matters here: without redis, token revocation
	// degrades to expiry-only.
	var redisClient redis.UniversalClient
	if rc := infra.GetRedis(); rc != nil {
		redisClient = rc
	}
	jwtService := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.ExpiryMinutes,
		cfg.JWT.RefreshDays,
		redisClient,
	)

	return &AppContainer{
		Engine:       engine,
		Resolver:     resolver,
		SchemaStore:  schemaStore,
		Instantiator: instantiator,
		Organization: organizationService,
		Budget:       budgetService,
		Procurement:  procurementService,
		JWTService:   jwtService,
		Notifier:     notifier,
	}
}

// SetupRouter builds the gin router and the background worker server.
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *worker.Server) {
	router := gin.New()

	container := BuildContainer(db, cfg)

	handlers := &Handlers{
		Auth:     orgHandlers.NewAuthHandler(container.Organization, container.JWTService),
		Org:      orgHandlers.NewOrgHandler(container.Organization),
		Budget:   budgetHandlers.NewHandler(container.Budget),
		Schema:   approvalHandlers.NewSchemaHandler(container.SchemaStore),
		Approval: approvalHandlers.NewApprovalHandler(container.Engine, container.Organization),
		Request:  procurementHandlers.NewRequestHandler(container.Procurement),
		Order:    procurementHandlers.NewOrderHandler(container.Procurement),
	}

	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())
	router.Use(metrics.GinMiddleware())

	router.GET("/health", HealthCheck(db))
	router.GET("/ready", ReadinessCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	RegisterRoutes(router, container, handlers)

	workerServer, err := worker.NewServer(cfg, container.Resolver, logger.Get())
	if err != nil {
		logger.Fatal("failed to build worker server", zap.Error(err))
	}

	return router, workerServer
}
