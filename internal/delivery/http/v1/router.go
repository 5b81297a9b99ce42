package v1

import (
	"github.com/CalumRakk/resume-project/config"
	"github.com/CalumRakk/resume-project/internal/delivery/http/middleware"
	securityhttp "github.com/CalumRakk/resume-project/internal/delivery/http/security"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/internal/usecase"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/logger"
	"github.com/CalumRakk/resume-project/pkg/security"
	"github.com/CalumRakk/resume-project/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC      domain.AuthUsecase
	ResumeUC    domain.ResumeUsecase
	TemplateUC  domain.TemplateUsecase
	HealthUC    usecase.HealthUsecase
	Validator   *auth.Validator
	RateLimiter *middleware.RateLimiter
	SecurityLog *security.SecurityLogger
	Config      *config.Config

	// SecurityEvents is nil when events are not persisted.
	SecurityEvents domain.SecurityEventReader
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	} else {
		logger.Log.Warn("Custom validators not registered: unexpected binding engine")
	}

	window := deps.Config.RateLimitWindow()

	r := gin.New()
	// nil trusts no proxy, so ClientIP falls back to the peer address
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		logger.Log.Error("Invalid TRUSTED_PROXIES, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// CORS first so preflights never reach the other middlewares
	r.Use(middleware.CORSMiddleware(append([]string{deps.Config.FrontendURL}, deps.Config.CORSAllowedOrigins...)...))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/v1")
	v1.Use(middleware.TokenBinding(deps.Validator, deps.AuthUC, deps.SecurityLog))

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("", middleware.RequireAuth())
	admin := protected.Group("", middleware.RequireRole(domain.RoleAdmin))

	tokenLimit := deps.RateLimiter.Middleware(middleware.TokenRateLimitConfig(deps.Config.RateLimitLoginThreshold, window))

	NewAuthHandler(v1, protected, deps.AuthUC, tokenLimit)
	NewResumeHandler(protected, deps.ResumeUC)
	NewTemplateHandler(v1, protected, admin, deps.TemplateUC)

	if deps.SecurityEvents != nil {
		securityhttp.NewEventsHandler(deps.SecurityEvents).RegisterRoutes(admin)
	}

	return r
}
