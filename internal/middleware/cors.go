package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// DefaultCORSMaxAge is the preflight cache duration in seconds (24 hours).
const DefaultCORSMaxAge = 86400

// CORS returns a CORS middleware allowing the given origins. With no origins
// all origins are allowed, which suits a public read-only API.
func CORS(origins ...string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.HEAD, echo.OPTIONS, echo.DELETE},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderXRequestID,
		},
		MaxAge: DefaultCORSMaxAge,
	})
}
