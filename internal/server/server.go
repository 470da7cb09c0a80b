package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todotrack/internal/config"
	"todotrack/internal/handler"
	"todotrack/internal/middleware"
	"todotrack/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which
	// the repositories rely on for duplicate username/tag detection.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := runMigrations(cfg); err != nil {
		return nil, err
	}

	// Setup Gin
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	tagRepo := repository.NewTagRepository(db)
	todoTagRepo := repository.NewTodoTagRepository(db)
	logRepo := repository.NewLogRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	userDataRepo := repository.NewUserDataRepository(db)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, logRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	todoHandler := handler.NewTodoHandler(todoRepo, logRepo)
	tagHandler := handler.NewTagHandler(tagRepo, logRepo)
	todoTagHandler := handler.NewTodoTagHandler(todoTagRepo, logRepo)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsRepo, logRepo)
	logHandler := handler.NewLogHandler(logRepo)
	userDataHandler := handler.NewUserDataHandler(userDataRepo, logRepo)

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/api/auth/register", userHandler.Register)
	r.POST("/api/auth/login", userHandler.Login)

	// Protected routes - require authentication
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, userRepo))
	{
		// Auth routes
		api.GET("/auth/user", userHandler.Me)
		api.PUT("/auth/profile", userHandler.UpdateProfile)
		api.PUT("/auth/password", userHandler.ChangePassword)

		// Todo routes
		api.GET("/todos", todoHandler.List)
		api.POST("/todos", todoHandler.Create)
		api.GET("/todos/stats", todoHandler.Stats)
		api.GET("/todos/:id", todoHandler.GetByID)
		api.PUT("/todos/:id", todoHandler.Update)
		api.PATCH("/todos/:id", todoHandler.Update)
		api.DELETE("/todos/:id", todoHandler.Delete)
		api.PATCH("/todos/:id/toggle", todoHandler.Toggle)

		// Tag routes
		api.GET("/tags", tagHandler.List)
		api.POST("/tags", tagHandler.Create)
		api.GET("/tags/stats", tagHandler.Stats)
		api.GET("/tags/popular", tagHandler.Popular)
		api.GET("/tags/name/:name", tagHandler.GetByName)
		api.GET("/tags/:id", tagHandler.GetByID)
		api.PUT("/tags/:id", tagHandler.Update)
		api.DELETE("/tags/:id", tagHandler.Delete)
		api.GET("/tags/:id/todos", tagHandler.TodosByTag)
		api.POST("/tags/:id/assign/:todoId", todoTagHandler.AssignByPath)
		api.DELETE("/tags/:id/remove/:todoId", todoTagHandler.RemoveByPath)

		// Association routes
		api.POST("/todo-tags", todoTagHandler.Assign)
		api.DELETE("/todo-tags", todoTagHandler.Remove)
		api.POST("/todo-tags/bulk", todoTagHandler.AssignBulk)
		api.DELETE("/todo-tags/bulk", todoTagHandler.RemoveBulk)
		api.GET("/todo-tags/stats", todoTagHandler.Stats)
		api.GET("/todo-tags/relationships", todoTagHandler.Relationships)
		api.PUT("/todo-tags/:todoId", todoTagHandler.ReplaceAll)

		// Analytics routes
		api.GET("/analytics/dashboard", analyticsHandler.Dashboard)
		api.GET("/analytics/daily", analyticsHandler.Daily)
		api.GET("/analytics/weekly", analyticsHandler.Weekly)
		api.GET("/analytics/priority", analyticsHandler.Priority)
		api.GET("/analytics/tags", analyticsHandler.Tags)
		api.GET("/analytics/overdue", analyticsHandler.Overdue)
		api.GET("/analytics/usage", analyticsHandler.Usage)
		api.GET("/analytics/compare", analyticsHandler.Compare)
		api.GET("/analytics/custom", analyticsHandler.Custom)

		// Activity log routes
		api.GET("/logs", logHandler.List)
		api.POST("/logs", logHandler.Create)
		api.GET("/logs/actions", logHandler.Actions)
		api.GET("/logs/stats", logHandler.Stats)
		api.DELETE("/logs/bulk", logHandler.Cleanup)

		// Backup routes
		api.GET("/user-data/export", userDataHandler.Export)
		api.POST("/user-data/import", userDataHandler.Import)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func runMigrations(cfg *config.Config) error {
	dsnURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(cfg.DBUser), url.QueryEscape(cfg.DBPassword),
		cfg.DBHost, cfg.DBPort, cfg.DBName,
	)

	migrator, err := migrate.New(cfg.MigrationsPath, dsnURL)
	if err != nil {
		return fmt.Errorf("❌ failed to init migrator: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("❌ migration failed: %w", err)
	}
	log.Println("✅ Database schema up to date")
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
