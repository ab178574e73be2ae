// Package errs defines the API's operational error type and the central
// Echo error handler. Operational errors carry a status code and a client
// safe message and are surfaced verbatim; anything else is logged and
// collapsed to a generic 500 outside development.
package errs

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError is an operational error: thrown deliberately with a status
// code, safe to show to the client as-is.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Message) }

// New builds an operational error with the given status and message.
func New(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Handler returns the central echo.HTTPErrorHandler. env selects between
// development (full error detail echoed back) and production (generic 500
// for unexpected errors). Router misses arrive here as echo.HTTPError
// with code 404 and get a descriptive message.
func Handler(env string) echo.HTTPErrorHandler {
	dev := env == "development" || env == "dev"
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var op *HTTPError
		if errors.As(err, &op) {
			_ = c.JSON(op.Code, echo.Map{"status": "error", "message": op.Message})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprint(he.Message)
			if he.Code == http.StatusNotFound {
				msg = "cannot find route: " + c.Request().Method + " " + c.Request().URL.Path
			}
			_ = c.JSON(he.Code, echo.Map{"status": "error", "message": msg})
			return
		}

		log.Printf("unexpected error: %v (%s %s)", err, c.Request().Method, c.Request().URL.Path)
		if dev {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{
				"status":  "error",
				"message": err.Error(),
			})
			return
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  "error",
			"message": "something went very wrong",
		})
	}
}
