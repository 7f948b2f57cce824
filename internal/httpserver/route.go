package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldserve/orders-api/internal/docs"
)

type Deps struct {
	OrderHandler *OrderHTTP
	Environment  string
	EnableDocs   bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "env": d.Environment})
	})
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/docs")
	})

	if d.EnableDocs {
		docs.Register(e)
	}

	orders := e.Group("/api/orders")
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/search", d.OrderHandler.SearchOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.PUT("/:id", d.OrderHandler.UpdateOrder)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
