package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arvind9018/edusource-backend/config"
	"github.com/arvind9018/edusource-backend/database"
	"github.com/arvind9018/edusource-backend/handlers"
	chat_handlers "github.com/arvind9018/edusource-backend/handlers/chat"
	course_handlers "github.com/arvind9018/edusource-backend/handlers/course"
	payment_handlers "github.com/arvind9018/edusource-backend/handlers/payment"
	"github.com/arvind9018/edusource-backend/services"
	"github.com/arvind9018/edusource-backend/services/gemini"
	"github.com/arvind9018/edusource-backend/services/razorpay"
	"github.com/arvind9018/edusource-backend/services/spaces"
	"github.com/arvind9018/edusource-backend/utils/cache"
	"github.com/arvind9018/edusource-backend/utils/middleware"
)

// SetupRoutes wires clients, services and handlers onto the app.
// Optional collaborators (Redis, Spaces, Gemini, Razorpay) degrade to
// nil when unconfigured; the affected operations then fail with a
// configuration error instead of blocking boot.
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnviornmentVariable) {
	// Security middleware
	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})

	// Redis cache (optional)
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Catalog caching and verification lockout are disabled.", err)
			redisCache = nil
		}
	}

	// Payment gateway (optional until credentials are set)
	var gateway services.OrderGateway
	rzp, err := razorpay.NewClient(razorpay.Config{
		KeyID:     getEnv.RAZORPAY_KEY_ID,
		KeySecret: getEnv.RAZORPAY_KEY_SECRET,
	})
	if err != nil {
		log.Printf("Warning: Razorpay is not configured: %v. Payment operations will fail with a configuration error.", err)
	} else {
		gateway = rzp
	}

	// Spaces client for course content (optional)
	var spacesClient *spaces.Client
	spacesClient, err = spaces.NewClient(spaces.Config{
		AccessKey: getEnv.DO_SPACES_KEY,
		SecretKey: getEnv.DO_SPACES_SECRET,
		Bucket:    getEnv.DO_SPACES_BUCKET,
		Region:    getEnv.DO_SPACES_REGION,
		Endpoint:  getEnv.DO_SPACES_ENDPOINT,
	})
	if err != nil {
		log.Printf("Warning: Spaces is not configured: %v. Course content URLs are disabled.", err)
		spacesClient = nil
	}

	// Gemini relay client (optional)
	var geminiClient *gemini.Client
	geminiClient, err = gemini.NewClient(gemini.Config{
		APIKey: getEnv.GEMINI_API_KEY,
		Model:  getEnv.GEMINI_MODEL,
	})
	if err != nil {
		log.Printf("Warning: Gemini is not configured: %v. Chat relay is disabled.", err)
		geminiClient = nil
	}

	// Verification lockout guard (needs Redis)
	var guard *middleware.VerifyGuard
	if redisCache != nil {
		guard = middleware.NewVerifyGuard(redisCache)
	}

	// Services and handlers
	paymentService := services.NewPaymentService(gateway, store)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService, guard)
	courseHandler := course_handlers.NewCourseHandler(store, redisCache, spacesClient)
	chatHandler := chat_handlers.NewChatHandler(geminiClient)

	// Health
	app.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	// Payment endpoint (action dispatch, matches the checkout frontend)
	paymentRoute := app.Group("/api/payment")
	if guard != nil {
		paymentRoute.Use(guard.CheckLockout())
	}
	paymentRoute.Get("/", paymentHandler.HandleInfo)
	paymentRoute.Post("/", paymentHandler.HandlePayment)

	// Versioned API
	v1 := app.Group("/api/v1")
	v1.Get("/courses", courseHandler.ListCourses)
	v1.Get("/courses/:id", courseHandler.GetCourse)
	v1.Get("/courses/:id/content", courseHandler.GetCourseContent)
	v1.Post("/chat", chatHandler.HandleChat)
}
