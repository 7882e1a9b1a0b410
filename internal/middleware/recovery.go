package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/rpruizc/scimonitor/internal/infrastructure/httpserver"
)

// DefaultStackSize is the maximum captured stack trace size (4KB).
const DefaultStackSize = 4 << 10

// Recovery returns a middleware that recovers from handler panics, logs the
// stack, and responds with a 500 in the standard error envelope.
func Recovery(logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}

					stack := make([]byte, DefaultStackSize)
					length := runtime.Stack(stack, false)

					req := c.Request()
					attrs := []any{
						slog.String("error", err.Error()),
						slog.String("method", req.Method),
						slog.String("path", req.URL.Path),
						slog.String("remote_ip", c.RealIP()),
						slog.String("stack", string(stack[:length])),
					}
					if requestID := GetRequestID(c); requestID != "" {
						attrs = append(attrs, slog.String("request_id", requestID))
					}
					logger.Error("panic recovered", attrs...)

					if !c.Response().Committed {
						_ = c.JSON(http.StatusInternalServerError, httpserver.Response{
							Success: false,
							Error: &httpserver.Error{
								Code:    "INTERNAL_ERROR",
								Message: "An internal error occurred",
							},
						})
					}
				}
			}()

			return next(c)
		}
	}
}
