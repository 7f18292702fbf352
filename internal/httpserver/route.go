package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	CartHandler *CartHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	crt := v1.Group("/cart")
	crt.GET("", d.CartHandler.GetCart)
	crt.POST("/items/:id/increase", d.CartHandler.IncreaseQuantity)
	crt.POST("/items/:id/decrease", d.CartHandler.DecreaseQuantity)
	crt.DELETE("/items/:id", d.CartHandler.RemoveLineItem)
}
