package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ikhtibar/internal/config"
	"ikhtibar/internal/handler"
	authHandler "ikhtibar/internal/handler/auth"
	resourceHandler "ikhtibar/internal/handler/resource"
	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/cache"
	"ikhtibar/internal/pkg/jwt"
	"ikhtibar/internal/pkg/mongodb"
	"ikhtibar/internal/pkg/ratelimit"
	"ikhtibar/internal/pkg/storagefactory"
	auditRepo "ikhtibar/internal/repository/audit"
	authRepo "ikhtibar/internal/repository/auth"
	notificationRepo "ikhtibar/internal/repository/notification"
	resourceRepo "ikhtibar/internal/repository/resource"
	"ikhtibar/internal/server/middleware"
	"ikhtibar/internal/service"
)

// Server is the HTTP server with all services wired in.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache

	authService         *service.AuthService
	userService         *service.UserService
	roleService         *service.RoleService
	auditService        *service.AuditService
	notificationService *service.NotificationService
	resourceService     service.ResourceService
}

// New creates the server and connects its backing stores.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}
	log.Info().Str("type", cfg.Storage.Type).Msg("initialized storage")

	db := mongoClient.Database()
	userRepository := authRepo.NewUserRepo(db)
	refreshTokenRepository := authRepo.NewRefreshTokenRepo(db)
	roleRepository := authRepo.NewRoleRepo(db)
	permissionRepository := authRepo.NewPermissionRepo(db)
	auditRepository := auditRepo.NewAuditRepo(db)
	notificationRepository := notificationRepo.NewNotificationRepo(db)
	resourceRepository := resourceRepo.NewResourceRepo(db)

	tokens := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.AccessTokenExpiry)

	authService := service.NewAuthService(userRepository, refreshTokenRepository, tokens, cfg.Auth.RefreshTokenExpiry)
	roleService := service.NewRoleService(roleRepository, permissionRepository, userRepository, redisCache)
	userService := service.NewUserService(userRepository, roleService, authService)
	auditService := service.NewAuditService(auditRepository)
	notificationService := service.NewNotificationService(notificationRepository, redisCache)
	resourceService := service.NewResourceService(resourceRepository, store)

	if err := roleService.SeedBuiltins(ctx); err != nil {
		return nil, fmt.Errorf("seed builtin roles: %w", err)
	}

	srv := &Server{
		cfg:                 cfg,
		engine:              engine,
		mongo:               mongoClient,
		redis:               redisCache,
		authService:         authService,
		userService:         userService,
		roleService:         roleService,
		auditService:        auditService,
		notificationService: notificationService,
		resourceService:     resourceService,
	}

	srv.setupRoutes()

	return srv, nil
}

func (s *Server) newLimiter() ratelimit.Limiter {
	limiterCfg := ratelimit.Config{
		MaxAttempts: s.cfg.Auth.MaxLoginAttempts,
		Window:      s.cfg.Auth.RateLimitWindow,
		Lockout:     s.cfg.Auth.LockoutDuration,
	}
	if s.cfg.Auth.RateLimiter == "redis" {
		return ratelimit.NewRedis(s.redis.Client(), limiterCfg)
	}
	return ratelimit.NewMemory(limiterCfg)
}

func (s *Server) setupRoutes() {
	debugMode := s.cfg.Server.Mode == "debug"

	// ErrorHandler is outermost so it converts errors and panics from
	// every later middleware and handler.
	s.engine.Use(middleware.ErrorHandler(debugMode))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())
	s.engine.Use(middleware.Audit(s.auditService))

	healthHandler := handler.NewHealthHandler(s.mongo, s.redis)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHdl := authHandler.NewHandler(s.authService, &s.cfg.Auth)
	userHdl := handler.NewUserHandler(s.userService)
	roleHdl := handler.NewRoleHandler(s.roleService)
	auditHdl := handler.NewAuditHandler(s.auditService)
	notificationHdl := handler.NewNotificationHandler(s.notificationService)
	resourceHdl := resourceHandler.NewHandler(s.resourceService)

	v1 := s.engine.Group("/api/v1")

	// Public authentication endpoints, rate limited per client IP so
	// repeated failures lock the caller out.
	public := v1.Group("")
	public.Use(middleware.RateLimit(s.newLimiter()))
	{
		public.POST("/auth/register", authHdl.Register)
		public.POST("/auth/login", authHdl.Login)
		public.POST("/auth/refresh", authHdl.Refresh)
	}

	// Everything below requires a valid access token. TokenRefresh runs
	// first so an expired token accompanied by a valid refresh token is
	// rotated transparently before Auth validates it.
	protected := v1.Group("")
	protected.Use(middleware.TokenRefresh(s.authService, &s.cfg.Auth))
	protected.Use(middleware.Auth(s.authService))
	{
		protected.POST("/auth/logout", authHdl.Logout)
		protected.POST("/auth/logout-all", authHdl.LogoutAll)
		protected.GET("/auth/me", authHdl.GetMe)
		protected.POST("/auth/change-password", authHdl.ChangePassword)

		protected.PUT("/users/me/profile", userHdl.UpdateProfile)

		protected.GET("/notifications", notificationHdl.Feed)
		protected.PUT("/notifications/:id/read", notificationHdl.MarkRead)
		protected.PUT("/notifications/read-all", notificationHdl.MarkAllRead)

		resources := protected.Group("/resources")
		{
			resources.POST("/upload", middleware.RequirePermission(s.roleService, auth.PermMediaUpload), resourceHdl.UploadFile)
			resources.GET("", resourceHdl.ListResources)
			resources.GET("/:resource_id", resourceHdl.GetResource)
			resources.GET("/:resource_id/download", resourceHdl.DownloadFile)
			resources.GET("/:resource_id/url", resourceHdl.GetDownloadURL)
			resources.PUT("/:resource_id", resourceHdl.UpdateResource)
			resources.DELETE("/:resource_id", resourceHdl.DeleteResource)
		}

		protected.POST("/notifications/publish",
			middleware.RequirePermission(s.roleService, auth.PermNotificationsSend), notificationHdl.Publish)

		users := protected.Group("/users")
		{
			users.GET("", middleware.RequirePermission(s.roleService, auth.PermUsersView), userHdl.List)
			users.GET("/:id", middleware.RequirePermission(s.roleService, auth.PermUsersView), userHdl.Get)
			users.PUT("/:id/status", middleware.RequirePermission(s.roleService, auth.PermUsersManage), userHdl.SetStatus)
			users.PUT("/:id/roles", middleware.RequirePermission(s.roleService, auth.PermRolesManage), userHdl.SetRoles)
			users.DELETE("/:id", middleware.RequirePermission(s.roleService, auth.PermUsersManage), userHdl.Delete)
		}

		roles := protected.Group("/roles")
		{
			roles.GET("", middleware.RequirePermission(s.roleService, auth.PermRolesView), roleHdl.List)
			roles.GET("/:id", middleware.RequirePermission(s.roleService, auth.PermRolesView), roleHdl.Get)
			roles.POST("", middleware.RequirePermission(s.roleService, auth.PermRolesManage), roleHdl.Create)
			roles.PUT("/:id", middleware.RequirePermission(s.roleService, auth.PermRolesManage), roleHdl.Update)
			roles.DELETE("/:id", middleware.RequirePermission(s.roleService, auth.PermRolesManage), roleHdl.Delete)
		}

		protected.GET("/permissions",
			middleware.RequirePermission(s.roleService, auth.PermRolesView), roleHdl.ListPermissions)

		protected.GET("/audit",
			middleware.RequireRoles(auth.RoleAdmin), auditHdl.List)
	}
}

// Run starts the server and blocks until ctx is cancelled or the
// listener fails. Shutdown drains in-flight requests and closes the
// backing store connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		if closeErr := s.mongo.Close(context.Background()); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close MongoDB connection")
		}
		if closeErr := s.redis.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close Redis connection")
		}

		return err
	case err := <-errCh:
		return err
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
