package main

import (
	"context"
	"log"

	"studio-booking/config"
	"studio-booking/internal/cache"
	"studio-booking/internal/database"
	"studio-booking/internal/handler"
	"studio-booking/internal/middleware"
	"studio-booking/internal/repository"
	"studio-booking/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	memberRepo := repository.NewMemberRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	scheduleCache := cache.NewRedisScheduleCache(rdb)

	settlementService := service.NewSettlementService(pool, sessionRepo, reservationRepo, memberRepo, scheduleCache)
	memberService := service.NewMemberService(memberRepo, reservationRepo)
	sessionService := service.NewSessionService(pool, sessionRepo, reservationRepo, memberRepo, scheduleCache, cfg.Booking.ScheduleCacheTTL)
	bookingService := service.NewBookingService(pool, reservationRepo, sessionRepo, memberRepo, scheduleCache, cfg.Booking.CancelCutoff)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// every entry settles past sessions before anything else runs
	router.Use(middleware.SettlementSweep(settlementService))

	authHandler := handler.NewAuthHandler(memberService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	reservationHandler := handler.NewReservationHandler(bookingService)
	memberHandler := handler.NewMemberHandler(memberService)

	authHandler.RegisterRoutes(router)
	sessionHandler.RegisterRoutes(router)
	reservationHandler.RegisterRoutes(router)
	memberHandler.RegisterRoutes(router)

	admin := router.Group("/api/v1/admin", middleware.AdminAuth(cfg.Server.AdminToken))
	sessionHandler.RegisterAdminRoutes(admin)
	reservationHandler.RegisterAdminRoutes(admin)
	memberHandler.RegisterAdminRoutes(admin)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
