package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/notes-backend/config"
	"github.com/vnkhanh/notes-backend/controllers"
	"github.com/vnkhanh/notes-backend/repositories"
	"github.com/vnkhanh/notes-backend/routes"
	"github.com/vnkhanh/notes-backend/services"
	"github.com/vnkhanh/notes-backend/utils"
	"github.com/vnkhanh/notes-backend/ws"
)

const orphanCleanupInterval = 6 * time.Hour

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("Cấu hình không hợp lệ: ", err)
	}

	config.InitDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage ảnh, có Redis thì cache signed URL
	var storage utils.ObjectStore = utils.NewSupabaseStorage(settings.SupabaseURL, settings.SupabaseKey, settings.SupabaseBucket)
	if settings.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Không kết nối được Redis, bỏ qua cache signed URL: %v", err)
		} else {
			storage = utils.NewCachedStorage(storage, rdb)
			log.Println("Redis connected, signed URL cache enabled")
		}
	}

	verifier := utils.ChainVerifier{utils.NewHMACVerifier(settings.JWTSecret, settings.JWTIssuer, settings.JWTAudience)}
	if settings.GoogleClientID != "" {
		verifier = append(verifier, utils.NewGoogleVerifier(settings.GoogleClientID))
	}

	noteRepo := repositories.NewNoteRepository(config.DB)
	orphanRepo := repositories.NewOrphanRepository(config.DB)
	hub := ws.NewHub()

	userService := services.NewUserService(repositories.NewUserRepository(config.DB))
	noteService := services.NewNoteService(noteRepo, userService, storage,
		services.WithChangeNotifier(hub),
		services.WithOrphanRepository(orphanRepo),
		services.WithSignedURLTTL(settings.SignedURLTTL),
		services.WithMaxImageBytes(settings.MaxImageBytes),
	)

	var summaries controllers.NoteSummarizer
	if settings.GeminiAPIKey != "" {
		summaries = services.NewSummaryService(noteRepo, services.NewGeminiSummarizer(settings.GeminiAPIKey, settings.GeminiModel))
	} else {
		log.Println("GEMINI_API_KEY chưa được cấu hình, tắt tính năng tóm tắt")
	}
	accountService := services.NewAccountService(settings.Auth0Domain, settings.Auth0ClientID, nil)

	utils.StartOrphanCleanupJob(ctx, orphanRepo, storage, orphanCleanupInterval)

	r := gin.Default()
	r.MaxMultipartMemory = settings.MaxImageBytes + 1<<20

	//Bật CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// body chừa 1 MiB cho các field text và header multipart
	r = routes.SetupRouter(r, routes.Deps{
		DB:           config.DB,
		Verifier:     verifier,
		Notes:        controllers.NewNoteController(noteService, summaries, controllers.WithMaxImageBytes(settings.MaxImageBytes)),
		Users:        controllers.NewUserController(userService, accountService),
		Hub:          hub,
		Upgrader:     ws.NewUpgrader(settings.AllowedOrigins),
		RateRPS:      settings.RateLimitRPS,
		RateBurst:    settings.RateLimitBurst,
		MaxBodyBytes: settings.MaxImageBytes + 1<<20,
	})

	// Route test server
	r.GET("/", func(c *gin.Context) {
		c.String(200, "Notes server is running")
	})

	log.Println("Server running at Port:" + settings.Port)
	if err := r.Run(":" + settings.Port); err != nil {
		log.Fatal(err)
	}
}
