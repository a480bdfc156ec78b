// Package handler contains the HTTP handlers of the API, the request
// validator and the error funnel that renders every failure as
// {"error":{"message","status"}}.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the message and the HTTP status it was sent with.
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HTTPErrorHandler is the error funnel of the API.  *echo.HTTPError values
// keep their status; anything else is a store or server failure reported as
// 500 with its message.  Server errors are sent to Sentry when configured.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil && code >= http.StatusInternalServerError {
			msg = he.Internal.Error()
		}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetExtra("UserID", c.Get("user_id"))
				hub.CaptureException(err)
			})
		}
	}

	body := ErrorBody{Error: ErrorDetail{Message: msg, Status: code}}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func notFound(msg string) error {
	return echo.NewHTTPError(http.StatusNotFound, msg)
}
