package routes

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/higpup01-design/proofok-simple/config"
	"github.com/higpup01-design/proofok-simple/controllers"
	"github.com/higpup01-design/proofok-simple/middleware"
	"github.com/higpup01-design/proofok-simple/notify"
	"github.com/higpup01-design/proofok-simple/store"
	"github.com/higpup01-design/proofok-simple/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, st *store.Store, notifier *notify.Notifier) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.LoadHTMLGlob("templates/*.html")

	rdb := utils.GetRedis(cfg)

	uploadController := controllers.NewUploadController(cfg, st, rdb)
	proofController := controllers.NewProofController(cfg, st, notifier)
	authController := controllers.NewAuthController(cfg)

	r.GET("/", func(ctx *gin.Context) {
		ctx.Header("Content-Type", "text/html; charset=utf-8")
		ctx.String(http.StatusOK,
			"ProofOK is running (%s). Try <a href='/healthz'>/healthz</a> or <a href='/upload'>/upload</a>.",
			config.Version)
	})

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"version": config.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.GET("/routes", func(ctx *gin.Context) {
		list := make([]string, 0, len(r.Routes()))
		for _, route := range r.Routes() {
			list = append(list, fmt.Sprintf("%s %s", route.Method, route.Path))
		}
		ctx.JSON(http.StatusOK, gin.H{"routes": list})
	})

	limited := r.Group("")
	limited.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	limited.GET("/upload", uploadController.FormPage)
	limited.POST("/upload", uploadController.FormUpload)
	limited.GET("/proof/:token", proofController.ProofPage)
	limited.GET("/p/:token/:filename", proofController.ServePDF)
	limited.POST("/respond/:token", proofController.Respond)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))
	api.POST("/auth/token", authController.TokenExchange)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(cfg.JWTSecret))
	protected.POST("/upload", uploadController.APIUpload)
	protected.GET("/proofs/:token", proofController.APIStatus)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.String(http.StatusNotFound, "404 page not found")
	})

	return r
}
