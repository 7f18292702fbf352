package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akosarev/storefront/internal/auth"
	"github.com/akosarev/storefront/internal/cart"
	"github.com/akosarev/storefront/internal/logging"
	"github.com/akosarev/storefront/internal/transport"
)

type CartHTTP struct {
	Stores    *Registry
	JWTSecret []byte
}

func (h *CartHTTP) store(c echo.Context) (*cart.Store, error) {
	userID, err := auth.UserID(c, h.JWTSecret)
	if err != nil {
		return nil, err
	}
	return h.Stores.For(userID, auth.Token(c)), nil
}

func (h *CartHTTP) respond(c echo.Context, st *cart.Store) error {
	return c.JSON(http.StatusOK, transport.CartResponse{
		Items:    st.Snapshot(),
		Subtotal: st.Subtotal(),
	})
}

// GetCart re-syncs from the commerce API and returns the canonical snapshot
// with its subtotal. A failed sync keeps the previous snapshot and reports
// the failure; the client may simply retry.
func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	st, err := h.store(c)
	if err != nil {
		l.Error("get_cart_error", "status", 401, "error", err)
		return err
	}

	if err := st.FetchCart(ctx); err != nil {
		l.Error("get_cart_error", "status", 502, "error", err)
		return c.JSON(http.StatusBadGateway, transport.ErrorResponse{Error: "could not load cart"})
	}

	return h.respond(c, st)
}

func (h *CartHTTP) IncreaseQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "increase.quantity")

	st, err := h.store(c)
	if err != nil {
		l.Error("increase_quantity_error", "status", 401, "error", err)
		return err
	}

	id := c.Param("id")
	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "invalid body"})
	}
	if id == "" || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "id and quantity>=1 required"})
	}

	if err := st.IncreaseQuantity(ctx, id, req.Quantity); err != nil {
		l.Error("increase_quantity_error", "status", 502, "line_item", id, "error", err)
		return c.JSON(http.StatusBadGateway, transport.ErrorResponse{Error: "cart update failed"})
	}

	return h.respond(c, st)
}

func (h *CartHTTP) DecreaseQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "decrease.quantity")

	st, err := h.store(c)
	if err != nil {
		l.Error("decrease_quantity_error", "status", 401, "error", err)
		return err
	}

	id := c.Param("id")
	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "invalid body"})
	}
	if id == "" || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "id and quantity>=1 required"})
	}

	// quantity 1 is a no-op inside the store: the floor is 1 and removal
	// stays a separate, explicit action
	if err := st.DecreaseQuantity(ctx, id, req.Quantity); err != nil {
		l.Error("decrease_quantity_error", "status", 502, "line_item", id, "error", err)
		return c.JSON(http.StatusBadGateway, transport.ErrorResponse{Error: "cart update failed"})
	}

	return h.respond(c, st)
}

// RemoveLineItem deletes a line item. The UI collects the user's
// confirmation and passes it as ?confirm=true; without it nothing happens.
func (h *CartHTTP) RemoveLineItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.line_item")

	st, err := h.store(c)
	if err != nil {
		l.Error("remove_line_item_error", "status", 401, "error", err)
		return err
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "id required"})
	}

	confirmed := c.QueryParam("confirm") == "true"
	if !confirmed {
		return c.JSON(http.StatusConflict, transport.ErrorResponse{Error: "confirmation required"})
	}

	ctx = cart.WithConfirmation(ctx, true)
	if err := st.RemoveLineItem(ctx, id); err != nil {
		l.Error("remove_line_item_error", "status", 502, "line_item", id, "error", err)
		return c.JSON(http.StatusBadGateway, transport.ErrorResponse{Error: "cart update failed"})
	}

	return h.respond(c, st)
}
