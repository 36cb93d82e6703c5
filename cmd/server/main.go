// Package main 是服务端的入口点
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"coredex-server/internal/cache"
	"coredex-server/internal/config"
	"coredex-server/internal/handler"
	"coredex-server/internal/middleware"
	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/internal/service"
	"coredex-server/internal/stream"
	"coredex-server/pkg/jwt"
	"coredex-server/pkg/util"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}

	// 自动迁移数据库表
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化 Redis
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Fatalf("Failed to init redis: %v", err)
	}

	// 初始化 JWT 服务
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expire)

	// 初始化 Repository 层
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	chatRepo := repository.NewChatRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// 初始化 Service 层
	groqClient := service.NewGroqClient(cfg)
	authService := service.NewAuthService(userRepo, sessionRepo, jwtService, redisCache)
	userService := service.NewUserService(userRepo)
	analysisService := service.NewAnalysisService(analysisRepo, groqClient)
	chatService := service.NewChatService(chatRepo, groqClient)
	adminService := service.NewAdminService(userRepo, analysisRepo)
	settingService := service.NewSettingService(settingRepo)

	// 写入默认管理员和默认配置
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seedAdmin(seedCtx, cfg, userRepo); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	if err := settingService.SeedDefaults(seedCtx); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	seedCancel()

	// 初始化统计推送 Hub
	hubCtx, hubCancel := context.WithCancel(context.Background())
	statsHub := stream.NewHub(adminService)
	go statsHub.Run(hubCtx)

	// 初始化 Handler 层
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	newsHandler := handler.NewNewsHandler(analysisService, chatService)
	adminHandler := handler.NewAdminHandler(adminService, settingService)
	streamHandler := stream.NewHandler(statsHub)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORS...))

	// 注册路由
	registerRoutes(router, jwtService, redisCache, authHandler, userHandler, newsHandler, adminHandler, streamHandler)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
		// 分析接口要等远程模型返回，读写超时放宽到分钟级
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// 先停推送，再关 HTTP
	hubCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := redisCache.Close(); err != nil {
		log.Printf("Failed to close redis: %v", err)
	}

	log.Println("Server exited")
}

// initDatabase 初始化数据库连接
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	// 构建 DSN (Data Source Name)
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.MySQL.Username,
		cfg.MySQL.Password,
		cfg.MySQL.Host,
		cfg.MySQL.Port,
		cfg.MySQL.Database,
		cfg.MySQL.Charset,
	)

	// 配置 GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 配置连接池
	sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MySQL.MaxLifetime) * time.Second)

	log.Println("Database connected successfully")
	return db, nil
}

// autoMigrate 自动迁移数据库表
func autoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&model.User{},
		&model.UserSession{},
		&model.Analysis{},
		&model.ChatTurn{},
		&model.SystemSetting{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// seedAdmin 写入默认管理员账号，已存在时跳过
func seedAdmin(ctx context.Context, cfg *config.Config, userRepo *repository.UserRepository) error {
	email := util.NormalizeEmail(cfg.Admin.Email)

	existing, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := util.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:         cfg.Admin.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("Default admin created: %s", email)
	return nil
}

// registerRoutes 注册所有路由
func registerRoutes(
	router *gin.Engine,
	jwtService *jwt.JWTService,
	redisCache *cache.RedisCache,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	newsHandler *handler.NewsHandler,
	adminHandler *handler.AdminHandler,
	streamHandler *stream.Handler,
) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.AuthMiddleware(jwtService, redisCache)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService, redisCache)
	requireAdmin := middleware.AdminMiddleware()

	api := router.Group("/api")

	// 认证与账号
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", requireAuth, authHandler.Logout)
		auth.GET("/verify", requireAuth, authHandler.Verify)
		auth.GET("/profile", requireAuth, userHandler.GetProfile)
		auth.PUT("/profile", requireAuth, userHandler.UpdateProfile)
		auth.PUT("/change-password", requireAuth, userHandler.ChangePassword)

		// 用户管理（需要管理员权限）
		adminUsers := auth.Group("/admin", requireAuth, requireAdmin)
		{
			adminUsers.GET("/users", adminHandler.ListUsers)
			adminUsers.PUT("/users/:id", adminHandler.UpdateUser)
			adminUsers.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	// 内容分析与对话
	news := api.Group("/news")
	{
		news.POST("/analyze", optionalAuth, newsHandler.Analyze)
		news.GET("/history", optionalAuth, newsHandler.History)
		news.GET("/history/:id", newsHandler.HistoryItem)
		news.DELETE("/history/:id", requireAuth, newsHandler.DeleteHistoryItem)

		news.POST("/chat", optionalAuth, newsHandler.Chat)
		news.GET("/chat/history", optionalAuth, newsHandler.ChatHistory)
		news.DELETE("/chat/history", requireAuth, newsHandler.ClearChatHistory)
		news.GET("/chat/history/:sessionId", requireAuth, newsHandler.ChatSession)
		news.DELETE("/chat/history/:sessionId", requireAuth, newsHandler.DeleteChatSession)

		// 后台统计与配置（需要管理员权限）
		adminNews := news.Group("/admin", requireAuth, requireAdmin)
		{
			adminNews.GET("/analytics", adminHandler.Analytics)
			adminNews.GET("/settings", adminHandler.ListSettings)
			adminNews.PUT("/settings/:key", adminHandler.UpdateSetting)
		}
	}

	// 实时统计推送
	api.GET("/stream/stats", streamHandler.HandleStats)
}
