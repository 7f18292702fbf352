package transport

import "github.com/akosarev/storefront/internal/models"

type CartResponse struct {
	Items    []models.LineItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
