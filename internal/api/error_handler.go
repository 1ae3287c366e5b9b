package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/service"
	"github.com/rryowa/blogapi/internal/util"
)

// ErrorHandler is the single translation boundary: every failure path ends
// up here and is mapped to a status plus a JSON body. Unclassified errors
// become a generic 500; internals are logged, never sent to the client.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			if respErr.Status >= http.StatusInternalServerError {
				log.Errorw("request failed", "error", err, "uri", c.Request().RequestURI)
			}
			if err := c.JSON(respErr.Status, map[string]string{"reason": respErr.Msg}); err != nil {
				log.Errorw("failed to write json response", "error", err)
			}
			return
		}

		if isUnauthorizedTokenError(err) {
			c.JSON(http.StatusUnauthorized, map[string]string{"reason": "unauthorized"})
			return
		}

		he, ok := err.(*echo.HTTPError)
		if ok {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			if err := c.JSON(he.Code, map[string]string{"reason": fmt.Sprintf("%v", he.Message)}); err != nil {
				log.Errorw("failed to write json response", "error", err)
			}
			return
		}

		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		c.JSON(http.StatusInternalServerError, map[string]string{"reason": "internal server error"})
	}
}

func isUnauthorizedTokenError(err error) bool {
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrTokenMalformed) ||
		errors.Is(err, service.ErrTokenRevoked)
}
