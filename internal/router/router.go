package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"gatepass/internal/auth"
	"gatepass/internal/config"
	"gatepass/internal/errors"
	"gatepass/internal/handler"
	"gatepass/internal/logging"
	"gatepass/internal/service"
)

const loginPath = "/auth/login"

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	GatePass *handler.GatePassHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *slog.Logger,
	authService service.AuthService,
	authorizer service.Authorizer,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		// The login preflight has its own handler that accepts any origin.
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions && c.Path() == loginPath
		},
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Gate Pass API"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST(loginPath, h.Auth.Login)
	e.OPTIONS(loginPath, h.Auth.LoginOptions)
	e.GET("/gate-passes/by-number/:gp_number", h.GatePass.GetGatePassByNumber)

	bearer := BearerAuth(authService)
	anyRole := handler.RequireRoles(authorizer)

	session := e.Group("/auth", bearer, anyRole)
	session.GET("/me", h.Auth.Me)
	session.POST("/logout", h.Auth.Logout)

	users := e.Group("/users", bearer, handler.RequireRoles(authorizer, auth.RoleEncoding, auth.RoleAdmin))
	users.GET("", h.User.ListUsers)
	users.POST("", h.User.CreateUser)
	users.PUT("/:id", h.User.UpdateUser)
	users.DELETE("/:id", h.User.DeleteUser)

	products := e.Group("/products", bearer, anyRole)
	products.GET("", h.Product.ListProducts)
	products.POST("", h.Product.CreateProduct)
	products.POST("/bulk", h.Product.BulkCreateProducts)
	products.PUT("/:id", h.Product.UpdateProduct)
	products.DELETE("/:id", h.Product.DeleteProduct)

	gatePasses := e.Group("/gate-passes", bearer, anyRole)
	gatePasses.GET("", h.GatePass.ListGatePasses)
	gatePasses.POST("", h.GatePass.CreateGatePass)
	gatePasses.GET("/:id", h.GatePass.GetGatePass)
	gatePasses.PATCH("/:id/status", h.GatePass.UpdateGatePassStatus)
}

// BearerAuth verifies the Authorization bearer token and stores its claims
// under handler.ClaimsContextKey. Every failure, including a missing header,
// is answered with 401.
func BearerAuth(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Verify(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			}).SetInternal(err)
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
