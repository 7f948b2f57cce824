package docs

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiSpec []byte

//go:embed index.html
var indexPage []byte

// Register mounts the interactive API documentation under /docs.
func Register(e *echo.Echo) {
	e.GET("/docs", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, indexPage)
	})
	e.GET("/docs/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", openapiSpec)
	})
}
