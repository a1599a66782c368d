package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"match-notify-service/handlers"
	"match-notify-service/middleware"
	"match-notify-service/models"
	"match-notify-service/services"
	"match-notify-service/utils"
	"match-notify-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Match{},
		&models.Player{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	pushServiceURL := os.Getenv("PUSH_SERVICE_URL")
	if pushServiceURL == "" {
		log.Fatal("PUSH_SERVICE_URL environment variable not set")
	}
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("MATCH_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("MATCH_SERVICE_TOKEN environment variable not set")
	}

	turnTimeout := 72 * time.Hour
	if raw := os.Getenv("MATCH_TURN_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid MATCH_TURN_TIMEOUT %q: %v", raw, err)
		}
		turnTimeout = parsed
	}

	playerStore := services.NewPlayerStore(db)
	pushClient := services.NewPushServiceClient(pushServiceURL, serviceToken)
	matchmaking := services.NewMatchmakingService(playerStore)
	notifier := services.NewNotificationService(playerStore, pushClient)
	hook := services.NewMatchHookService(matchmaking, notifier)
	matchService := services.NewMatchService(db, hook)

	syncWorker := workers.NewPlayerSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)
	matchService.StartTimeoutScheduler(turnTimeout)

	handlers.SetupMatchRoutes(app, matchService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Player Sync Worker running")
	log.Printf("✅ Turn timeout sweeper running (timeout: %s)", turnTimeout)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
