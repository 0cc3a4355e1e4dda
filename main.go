package main

import (
	"log"

	"github.com/PeakReachMedia/peakreach-go/api"
	"github.com/PeakReachMedia/peakreach-go/cache"
	"github.com/PeakReachMedia/peakreach-go/config"
	"github.com/PeakReachMedia/peakreach-go/email"
	"github.com/PeakReachMedia/peakreach-go/geo"
	"github.com/PeakReachMedia/peakreach-go/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	// Session cache
	cacheManager := cache.NewManager()
	cache.GlobalInstance = cacheManager
	cache.StartCleanupRoutine(cacheManager)
	log.Println("Session cache initialized")

	// Backing store
	db, err := api.NewDB()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Lead rate limiter. The limiter fails open when Redis is down, so a
	// missing Redis only costs the quota, not lead capture.
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
	})
	limiter := ratelimit.NewLimiter(rdb, config.LeadRateLimitWindow, int64(config.LeadRateLimitMax))

	// Notifications are optional; the pipeline runs without them.
	mailer, err := email.NewClient()
	if err != nil {
		log.Printf("WARN: email notifications disabled: %v", err)
		mailer = nil
	}

	sessionService := api.NewSessionService(db.Conn, cacheManager, geo.NewClient())
	leadService := api.NewLeadService(db.Conn, cacheManager, limiter, mailer)
	funnelService := api.NewFunnelService(db.Conn, mailer, leadService)
	queryService := api.NewQueryService(db.Conn, sessionService)
	relayService := api.NewRelayService(config.SheetWebhookURL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.FilteredLogger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:4321",
			"https://peakreach.io",
			"https://www.peakreach.io",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With", "x-session-id",
		},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/session/validate", sessionService.ValidateHandler)
		v1.POST("/session/create", sessionService.CreateHandler)
		v1.POST("/session/data", api.RequireOperator(config.JWTSecret), queryService.SessionDataHandler)

		v1.POST("/leads", leadService.CreateOrUpdateHandler)
		v1.GET("/leads/:id", leadService.GetLeadHandler)

		v1.POST("/audits", funnelService.CreateAuditHandler)
		v1.POST("/competitor-analysis", funnelService.CreateCompetitorAnalysisHandler)
		v1.POST("/bookings", funnelService.CreateBookingHandler)

		v1.POST("/forms/relay", relayService.RelayHandler)

		v1.POST("/auth/login", api.LoginHandler)
	}

	log.Printf("Starting server on :%s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
