package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/culturecart/accounts-api/internal/api/handler"
	"github.com/culturecart/accounts-api/internal/api/middleware"
	"github.com/culturecart/accounts-api/internal/core/ports"
	"github.com/culturecart/accounts-api/internal/infrastructure/storage"

	_ "github.com/culturecart/accounts-api/docs"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Profiles ports.ProfileService
	Admin    ports.AdminService
	Tokens   middleware.TokenVerifier
	Users    middleware.UserLookup

	// HealthChecks are probed by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck

	// TrustedProxies are CIDR ranges allowed to set X-Forwarded-For. With none,
	// the client IP is the socket peer address.
	TrustedProxies []string

	// UploadDir is served under /uploads when non-empty.
	UploadDir   string
	MaxUploadMB int

	// Metrics receives the HTTP metrics and backs /metrics. Nil selects the
	// default Prometheus registry.
	Metrics *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = clientIPExtractor(deps.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	promCfg := echoprometheus.MiddlewareConfig{
		Subsystem: "culturecart",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
	}
	var promHandler echo.HandlerFunc
	if deps.Metrics != nil {
		promCfg.Registerer = deps.Metrics
		promHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Metrics})
	} else {
		promHandler = echoprometheus.NewHandler()
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Handlers ---
	gate := middleware.NewAuthenticator(deps.Tokens, deps.Users)
	accounts := handler.NewAccountHandler(deps.Auth)
	profiles := handler.NewProfileHandler(deps.Profiles)
	admin := handler.NewAdminHandler(deps.Auth, deps.Admin)
	health := handler.NewHealthHandler(deps.HealthChecks)

	maxUpload := deps.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 20
	}
	uploadLimit := echomiddleware.BodyLimit(strconv.Itoa(maxUpload) + "M")

	// --- Account routes ---
	users := e.Group("/api/users")
	users.POST("/register", accounts.Register)
	users.POST("/login", accounts.Login)
	users.POST("/login-or-register", accounts.LoginOrRegister)
	users.GET("/artisans", profiles.Artisans)
	users.POST("/logout", accounts.Logout, gate.AnyUser())
	users.GET("/me", profiles.Me, gate.AnyUser())
	users.PUT("/me", profiles.UpdateMe, gate.AnyUser())
	users.POST("/me/avatar", profiles.UploadAvatar, gate.AnyUser(), uploadLimit)
	users.POST("/me/gallery", profiles.UploadGallery, gate.AnyUser(), uploadLimit)

	// --- Admin routes ---
	adm := e.Group("/api/admin")
	adm.POST("/login", admin.Login)
	adm.GET("/me", admin.Me, gate.AdminOnly())
	adm.POST("/logout", admin.Logout, gate.AdminOnly())
	adm.GET("/dashboard", admin.Dashboard, gate.AdminOnly())
	adm.POST("/users", admin.CreateUser, gate.AdminOnly())
	adm.PUT("/users/:id/role", admin.SetRole, gate.AdminOnly())

	// --- Static uploads (disk backend) ---
	if deps.UploadDir != "" {
		e.Static(storage.PublicPrefix, deps.UploadDir)
	}

	// --- Health probes, metrics, docs (no auth required) ---
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", promHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Route not found")
	})

	return e
}

// clientIPExtractor reads the client address from X-Forwarded-For only when the
// request arrives from one of the trusted proxy ranges.
func clientIPExtractor(proxies []string) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range proxies {
		if _, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr)); err == nil {
			opts = append(opts, echo.TrustIPRange(ipNet))
		}
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
