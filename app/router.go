// Package app wires the HTTP surface together
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/app/message"
	"github.com/Abhishek5chawan/WhisperLink/app/root"
	"github.com/Abhishek5chawan/WhisperLink/app/user"
	"github.com/Abhishek5chawan/WhisperLink/db"
	"github.com/Abhishek5chawan/WhisperLink/internal"
	"github.com/Abhishek5chawan/WhisperLink/internal/service"
	"github.com/Abhishek5chawan/WhisperLink/pkg/middleware"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"

	maxBodySize = 64 << 10
)

// RouteOpts holds what the routes need besides Deps. Tests build it by hand.
type RouteOpts struct {
	Origins         []string
	RateLimit       int
	TurnstileSecret string
	Cache           persist.CacheStore
}

func NewRouter(ctx context.Context) (*gin.Engine, *internal.Deps, error) {
	makeLogger(viper.GetString("app.log_level"))

	d, err := NewDeps(ctx)
	if err != nil {
		return nil, nil, err
	}

	router := gin.New()
	SetupRoutes(router, d, RouteOpts{
		Origins:         viper.GetStringSlice("host.cors"),
		RateLimit:       viper.GetInt("security.rate_limit"),
		TurnstileSecret: viper.GetString("security.turnstile_secret"),
		Cache:           newCacheStore(),
	})

	if err := d.Cleanup.Start(viper.GetString("cleanup.schedule")); err != nil {
		return nil, nil, fmt.Errorf("failed to schedule account cleanup, %w", err)
	}

	return router, d, nil
}

// NewDeps builds every service from the loaded config
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	s, err := db.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d := &internal.Deps{
		Store:         s,
		Argon:         security.New(),
		Sessions:      security.NewSessions(viper.GetString("security.jwt_secret"), viper.GetDuration("security.session_ttl")),
		SecureCookies: viper.GetBool("host.ssl.enabled"),
	}

	var mailer service.Mailer = service.LogMailer{}
	if viper.GetBool("mail.enabled") {
		mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:     viper.GetString("mail.host"),
			Port:     viper.GetInt("mail.port"),
			Username: viper.GetString("mail.username"),
			Password: viper.GetString("mail.password"),
			Sender:   viper.GetString("mail.sender"),
		})
	}

	d.Accounts = service.NewAccountService(s, d.Argon, mailer, service.AccountOpts{
		CodeTTL:        viper.GetDuration("verification.code_ttl"),
		ResendCooldown: viper.GetDuration("verification.resend_cooldown"),
	})
	d.Inbox = service.NewInboxService(s)

	d.Suggester = service.StaticSuggester{}
	if key := viper.GetString("suggest.api_key"); key != "" {
		d.Suggester = service.NewHFSuggester(viper.GetString("suggest.endpoint"), key, viper.GetDuration("suggest.timeout"))
	}

	d.Cleanup = service.NewAccountCleanup(s, viper.GetDuration("cleanup.unverified_grace"))

	return d, nil
}

func SetupRoutes(router *gin.Engine, d *internal.Deps, opts RouteOpts) {
	if opts.Cache == nil {
		opts.Cache = persist.NewMemoryStore(time.Minute)
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     opts.Origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true

	jwt := middleware.NewJWTMiddleware(d.Sessions, d.Store)
	turnstile := middleware.NewTurnstileMiddleware(opts.TurnstileSecret)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: opts.RateLimit,
		Burst:             opts.RateLimit * 2,
		TTL:               3 * time.Minute,
	})

	m := router.Group("/api", rateLimiter, middleware.BodySizeLimiter(maxBodySize))
	{
		// HEAD /api/heartbeat			-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })
		m.GET("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// POST /api/sign-up			-> Registers a new user and mails a verification code
		m.POST("/sign-up", turnstile, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/verify-code		-> Verifies a new user with the mailed code
		m.POST("/verify-code", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /api/resend-code		-> Issues a fresh verification code
		m.POST("/resend-code", func(c *gin.Context) { user.UserResendCode(c, d) })

		// GET /api/check-username-unique	-> Checks if a username can be registered
		m.GET("/check-username-unique", cache.CacheByRequestURI(opts.Cache, 5*time.Second), func(c *gin.Context) { user.UserCheckUnique(c, d) })

		// POST /api/sign-in			-> Signs in a user and sets the session cookie
		m.POST("/sign-in", func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/sign-out			-> Clears the session cookie
		m.POST("/sign-out", func(c *gin.Context) { user.UserLogout(c, d) })

		// GET /api/session			-> Returns the signed in user
		m.GET("/session", jwt, func(c *gin.Context) { user.UserFetch(c, d) })

		// GET /api/accept-messages		-> Returns whether the user accepts messages
		m.GET("/accept-messages", jwt, func(c *gin.Context) { user.UserAcceptStatus(c, d) })

		// POST /api/accept-messages		-> Turns message intake on or off
		m.POST("/accept-messages", jwt, func(c *gin.Context) { user.UserAcceptToggle(c, d) })

		// POST /api/send-message		-> Sends an anonymous message to a user
		m.POST("/send-message", turnstile, func(c *gin.Context) { message.MessageSend(c, d) })

		// GET /api/get-messages		-> Returns the user's inbox, newest first
		m.GET("/get-messages", jwt, func(c *gin.Context) { message.MessageFetch(c, d) })

		// DELETE /api/delete-message/:messageId	-> Removes a message from the user's inbox
		m.DELETE("/delete-message/:messageId", jwt, func(c *gin.Context) { message.MessageDelete(c, d) })

		// POST /api/suggest-messages		-> Returns message ideas separated by "||"
		m.POST("/suggest-messages", func(c *gin.Context) { message.MessageSuggest(c, d) })
	}
}

// newCacheStore keeps cached responses in redis when configured so that
// several instances share them
func newCacheStore() persist.CacheStore {
	addr := viper.GetString("cache.redis_addr")
	if addr == "" {
		return persist.NewMemoryStore(time.Minute)
	}

	zap.L().Debug("Using redis response cache", zap.String("addr", addr))

	return persist.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("cache.redis_password"),
	}))
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
