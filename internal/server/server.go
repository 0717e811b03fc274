package server

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"printfee/api/internal/config"
	"printfee/api/internal/handler"
	"printfee/api/internal/middleware"
	"printfee/api/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	nats   *nats.Conn
	events *service.EventService
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) *Server {
	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		nats:   natsConn,
	}
}

// Setup initializes routes and handlers
func (s *Server) Setup() {
	// Initialize services
	s.events = service.NewEventService(s.nats)
	customerService := service.NewCustomerService(s.db)
	historyService := service.NewHistoryService(s.db, s.redis, s.events)
	exportService := service.NewExportService(historyService, s.config.ExportDir)

	// Initialize handlers
	calculationHandler := handler.NewCalculationHandler(customerService, historyService, s.config.Pricing)
	customerHandler := handler.NewCustomerHandler(customerService)
	exportHandler := handler.NewExportHandler(exportService)

	// Setup Gin router
	s.router = gin.Default()

	// CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Swagger UI
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	s.router.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "ok"}
		if s.events.Enabled() {
			health["events"] = "enabled"
		} else {
			health["events"] = "disabled"
		}
		c.JSON(200, health)
	})

	// Export downloads keep the original top-level path
	s.router.GET("/download/:filename", exportHandler.Download)

	// API routes
	api := s.router.Group("/api/v1")
	if s.config.RateLimit.Enabled && s.redis != nil {
		api.Use(s.rateLimitMiddleware())
	}
	{
		// Billing
		api.POST("/calculate", calculationHandler.Calculate)
		api.POST("/meter/last", calculationHandler.LastMeter)
		api.POST("/clear-history", calculationHandler.ClearHistory)

		// Customers
		api.GET("/customers", customerHandler.List)
		api.POST("/customers/info", customerHandler.Info)

		// Export
		api.POST("/export-excel", exportHandler.Export)
	}
}

// rateLimitMiddleware builds the rate limit group from config
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	limiter := middleware.NewRedisRateLimiter(s.redis)
	group := middleware.NewRateLimitGroup(limiter, s.config.RateLimit.DefaultRule.ToMiddlewareConfig())
	for i := range s.config.RateLimit.SpecificRules {
		rule := &s.config.RateLimit.SpecificRules[i]
		group.AddSpecificConfig(rule.Path, rule.ToMiddlewareConfig())
	}
	return group.Middleware()
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	log.Printf("[Server] HTTP server listening on %s", addr)
	return s.router.Run(addr)
}

// GetRouter returns the gin router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
