package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notes-api/internal/config"
	"notes-api/internal/db"
	"notes-api/internal/email"
	apihttp "notes-api/internal/http"
	"notes-api/internal/repository"
	"notes-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	noteRepo := repository.NewPgNoteRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	// Sin Redis, OTPs y limites viven en memoria del proceso.
	otpStore := service.NewMemoryOTPStore()
	otpLimiter := service.NewMemoryRateLimiter(cfg.OTPRequestWindow, cfg.OTPRequestMax)
	ipLimiter := service.NewMemoryRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisRateLimiter(logger, redisClient, "rl:otp:", cfg.OTPRequestWindow, cfg.OTPRequestMax)
			ipLimiter = service.NewRedisRateLimiter(logger, redisClient, "rl:ip:", cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		cancel()
	}

	jwtSvc, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatal("jwt service", zap.Error(err))
	}

	otpOpts := []service.OTPOption{service.WithRequestLimiter(otpLimiter)}
	if code := cfg.DevBypassCode(); code != "" {
		logger.Warn("development otp bypass enabled", zap.String("app_env", cfg.AppEnv))
		otpOpts = append(otpOpts, service.WithDevBypassCode(code))
	}
	otpSvc := service.NewOTPService(logger, otpStore, userRepo, emailSender, cfg.OTPTTL, otpOpts...)

	userSvc := service.NewUserService(logger, service.UserServiceDeps{
		Users:        userRepo,
		Hasher:       service.NewPasswordHasher(cfg.BcryptCost),
		OTP:          otpSvc,
		Tokens:       jwtSvc,
		Resets:       service.NewResetTokenIssuer(cfg.ResetTokenTTL),
		EmailSender:  emailSender,
		ResetURLBase: cfg.FrontendURL,
	})
	noteSvc := service.NewNoteService(noteRepo)

	handler := apihttp.NewHandler(apihttp.RouterDeps{
		Logger:      logger,
		Auth:        apihttp.NewAuthHandler(logger, userSvc, otpSvc),
		Notes:       apihttp.NewNoteHandler(logger, noteSvc),
		Tokens:      jwtSvc,
		Users:       userSvc,
		IPLimiter:   ipLimiter,
		FrontendURL: cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("app_env", cfg.AppEnv))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
