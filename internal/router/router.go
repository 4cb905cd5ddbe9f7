package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"colistrack/internal/auth"
	"colistrack/internal/config"
	"colistrack/internal/errors"
	"colistrack/internal/handler"
	"colistrack/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	packageHandler *handler.PackageHandler,
	attachmentHandler *handler.AttachmentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes. Credential endpoints get a per-IP rate limit.
	credentialLimit := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(5)),
	})
	api.POST("/auth/register", authHandler.Register, credentialLimit)
	api.POST("/auth/login", authHandler.Login, credentialLimit)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication). The token is parsed into
	// typed claims so role checks never re-fetch the profile.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), rejectBlacklisted(tokenStore))

	secured.GET("/me", authHandler.Me)

	// Package routes available to any authenticated account.
	secured.GET("/packages", packageHandler.ListMine)
	secured.POST("/packages", packageHandler.CreateMine)
	secured.GET("/packages/track/:trackingNumber", packageHandler.GetByTrackingNumber)
	secured.GET("/packages/:id", packageHandler.Get)
	secured.GET("/packages/:id/history", packageHandler.History)
	secured.GET("/packages/:id/attachments", attachmentHandler.List)
	secured.GET("/attachments/:id/download", attachmentHandler.Download)

	// Admin routes.
	admin := secured.Group("/admin", requireAdmin)
	admin.GET("/packages", packageHandler.ListAll)
	admin.POST("/packages", packageHandler.Create)
	admin.PUT("/packages/:id", packageHandler.Update)
	admin.DELETE("/packages/:id", packageHandler.Delete)
	admin.POST("/packages/:id/history", packageHandler.AppendHistory)
	admin.POST("/packages/:id/attachments", attachmentHandler.Upload)
	admin.GET("/stats", packageHandler.Stats)
}

// requireAdmin gates a route group on the admin role derived from the
// validated token. The decision is made only after the JWT middleware has
// settled the authentication question.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := handler.CurrentClaims(c)
		if err != nil {
			return err
		}
		if !auth.CanAccess(claims.Role, model.RoleAdmin) {
			httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return next(c)
	}
}

// rejectBlacklisted refuses access tokens revoked by logout.
func rejectBlacklisted(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := handler.CurrentClaims(c)
			if err != nil {
				return err
			}
			if claims.ID != "" {
				blacklisted, _ := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
				if blacklisted {
					return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
						Error: "token revoked",
						Code:  "TOKEN_REVOKED",
					})
				}
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
