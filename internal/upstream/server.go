package upstream

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/akosarev/storefront/internal/auth"
	"github.com/akosarev/storefront/internal/logging"
	"github.com/akosarev/storefront/internal/models"
)

// Handler implements the three-endpoint cart contract of the commerce API.
// The storefront treats that API as a black box; this implementation exists
// for local development and integration tests.
type Handler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func Register(e *echo.Echo, h *Handler) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/view-cart-product", h.ViewCart)
	e.POST("/update-cart-product", h.UpdateQuantity)
	e.POST("/delete-cart-product", h.DeleteLineItem)

	// not part of the storefront contract; lets dev setups put items in a cart
	e.POST("/add-cart-product", h.AddToCart)
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, envelope{Success: false, Message: message})
}

func (h *Handler) ViewCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upstream.view_cart")

	userID, err := auth.UserID(c, h.JWTSecret)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var lines []CartLineRecord
	if err := h.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
		l.Error("load cart lines", "error", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	items := make([]models.LineItem, 0, len(lines))
	for _, line := range lines {
		item := models.LineItem{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		var p ProductRecord
		err := h.DB.WithContext(ctx).First(&p, "id = ?", line.ProductID).Error
		switch {
		case err == nil:
			item.Product = &models.Product{
				ID:     p.ID,
				Name:   p.Name,
				Price:  p.Price,
				Images: p.Images,
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// product deleted; the line item survives with no product data
		default:
			l.Error("load product", "product_id", line.ProductID, "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
		items = append(items, item)
	}

	return ok(c, items)
}

func (h *Handler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upstream.update_quantity")

	userID, err := auth.UserID(c, h.JWTSecret)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		LineItemID string `json:"lineItemId"`
		Quantity   int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.LineItemID == "" {
		return fail(c, http.StatusBadRequest, "lineItemId required")
	}
	if req.Quantity < 1 {
		return fail(c, http.StatusBadRequest, "quantity must be at least 1")
	}

	var line CartLineRecord
	if err := h.DB.WithContext(ctx).First(&line, "id = ? AND user_id = ?", req.LineItemID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "line item not found")
		}
		l.Error("load line item", "error", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	line.Quantity = req.Quantity
	if err := h.DB.WithContext(ctx).Save(&line).Error; err != nil {
		l.Error("save line item", "error", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	l.Info("quantity updated", "line_item", line.ID, "quantity", line.Quantity)
	return ok(c, line)
}

func (h *Handler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upstream.add_to_cart")

	userID, err := auth.UserID(c, h.JWTSecret)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		return fail(c, http.StatusBadRequest, "productId required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var line CartLineRecord
	err = h.DB.WithContext(ctx).First(&line, "user_id = ? AND product_id = ?", userID, req.ProductID).Error
	switch {
	case err == nil:
		line.Quantity += req.Quantity
		if err := h.DB.WithContext(ctx).Save(&line).Error; err != nil {
			l.Error("save line item", "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = CartLineRecord{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := h.DB.WithContext(ctx).Create(&line).Error; err != nil {
			l.Error("create line item", "error", err)
			return fail(c, http.StatusInternalServerError, "internal error")
		}
	default:
		l.Error("load line item", "error", err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}

	l.Info("item added", "line_item", line.ID, "quantity", line.Quantity)
	return ok(c, line)
}

func (h *Handler) DeleteLineItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upstream.delete_line_item")

	userID, err := auth.UserID(c, h.JWTSecret)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		LineItemID string `json:"lineItemId"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.LineItemID == "" {
		return fail(c, http.StatusBadRequest, "lineItemId required")
	}

	res := h.DB.WithContext(ctx).Where("id = ? AND user_id = ?", req.LineItemID, userID).Delete(&CartLineRecord{})
	if res.Error != nil {
		l.Error("delete line item", "error", res.Error)
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "line item not found")
	}

	l.Info("line item deleted", "line_item", req.LineItemID)
	return ok(c, map[string]any{"deleted": req.LineItemID})
}
