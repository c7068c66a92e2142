package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"notes-api/internal/service"
)

// RouterDeps agrupa lo que el router necesita para montar las rutas.
type RouterDeps struct {
	Logger      *zap.Logger
	Auth        *AuthHandler
	Notes       *NoteHandler
	Tokens      SessionVerifier
	Users       UserLookup
	IPLimiter   service.RateLimiter
	FrontendURL string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), recoveryMiddleware(logger), jsonContentTypeMiddleware())
	if deps.IPLimiter != nil {
		r.Use(rateLimitMiddleware(deps.IPLimiter))
	}

	r.GET("/", func(c *gin.Context) {
		respondOK(c, http.StatusOK, "Welcome to the notes API", gin.H{
			"version": "1.0.0",
			"endpoints": gin.H{
				"health": "/api/health",
				"auth":   "/api/auth",
				"notes":  "/api/notes",
			},
		})
	})

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respondOK(c, http.StatusOK, "Notes API is running", gin.H{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	requireAuth := AuthMiddleware(logger, deps.Tokens, deps.Users)

	auth := api.Group("/auth")
	auth.POST("/send-otp", deps.Auth.SendOTP)
	auth.POST("/signup", deps.Auth.Signup)
	auth.POST("/signin", deps.Auth.Signin)
	auth.POST("/forgot-password", deps.Auth.ForgotPassword)
	auth.POST("/reset-password", deps.Auth.ResetPassword)
	auth.GET("/me", requireAuth, deps.Auth.Me)

	notes := api.Group("/notes", requireAuth)
	notes.GET("", deps.Notes.List)
	notes.POST("", deps.Notes.Create)
	notes.PUT("/:id", deps.Notes.Update)
	notes.DELETE("/:id", deps.Notes.Delete)

	r.NoRoute(func(c *gin.Context) {
		respondFail(c, http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request.URL.Path))
	})

	return r
}

// NewHandler envuelve el router con CORS restringido al frontend.
func NewHandler(deps RouterDeps) http.Handler {
	origin := deps.FrontendURL
	if origin == "" {
		origin = "http://localhost:3000"
	}
	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return corsMiddleware(NewRouter(deps))
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// recoveryMiddleware convierte un panic en un 500 JSON.
func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		respondFail(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// rateLimitMiddleware limita requests por IP de cliente.
func rateLimitMiddleware(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			respondFail(c, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
