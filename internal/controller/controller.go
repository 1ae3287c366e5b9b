package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/service"
	"github.com/rryowa/blogapi/internal/util"
)

type Controller struct {
	zapLogger      *zap.SugaredLogger
	authService    *service.AuthService
	blogService    *service.BlogService
	commentService *service.CommentService
	cookieMaxAge   time.Duration
}

func NewController(
	logger *zap.SugaredLogger,
	authService *service.AuthService,
	blogService *service.BlogService,
	commentService *service.CommentService,
	tokenCfg *util.TokenConfig,
) *Controller {
	return &Controller{
		zapLogger:      logger,
		authService:    authService,
		blogService:    blogService,
		commentService: commentService,
		cookieMaxAge:   tokenCfg.CookieMaxAge,
	}
}

// (POST /register).
func (c *Controller) Register(ctx echo.Context) error {
	var req models.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	user, pair, err := c.authService.Register(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	c.setAuthCookies(ctx, pair)
	return ctx.JSON(http.StatusCreated, models.AuthResponse{User: user, Auth: true})
}

// (POST /login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewValidationError("invalid request body")
	}

	user, pair, err := c.authService.Login(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	c.setAuthCookies(ctx, pair)
	return ctx.JSON(http.StatusOK, models.AuthResponse{User: user, Auth: true})
}

// (POST /logout). Cookies are cleared whatever the storage outcome.
func (c *Controller) Logout(ctx echo.Context) error {
	accessToken := cookieValue(ctx, models.AccessTokenCookie)
	refreshToken := cookieValue(ctx, models.RefreshTokenCookie)

	err := c.authService.Logout(ctx.Request().Context(), accessToken, refreshToken)
	c.clearAuthCookies(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, models.AuthResponse{User: nil, Auth: false})
}

// (GET /refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	refreshToken := cookieValue(ctx, models.RefreshTokenCookie)
	if refreshToken == "" {
		return util.NewAuthenticationError("unauthorized")
	}

	user, pair, err := c.authService.Refresh(ctx.Request().Context(), refreshToken)
	if err != nil {
		return err
	}

	c.setAuthCookies(ctx, pair)
	return ctx.JSON(http.StatusOK, models.AuthResponse{User: user, Auth: true})
}

func (c *Controller) setAuthCookies(ctx echo.Context, pair service.TokenPair) {
	maxAge := int(c.cookieMaxAge.Seconds())
	ctx.SetCookie(&http.Cookie{
		Name:     models.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	ctx.SetCookie(&http.Cookie{
		Name:     models.RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
}

func (c *Controller) clearAuthCookies(ctx echo.Context) {
	for _, name := range []string{models.AccessTokenCookie, models.RefreshTokenCookie} {
		ctx.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}

func cookieValue(ctx echo.Context, name string) string {
	cookie, err := ctx.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// currentUser returns the projection the auth middleware stored.
func currentUser(ctx echo.Context) (*models.UserDTO, error) {
	user, ok := ctx.Get(models.MwUserKey).(*models.UserDTO)
	if !ok || user == nil {
		return nil, util.NewAuthenticationError("unauthorized")
	}
	return user, nil
}
