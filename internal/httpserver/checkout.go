package httpserver

import (
	"context"
	"net/http"

	"pizzeria-storefront/internal/domain"
	"pizzeria-storefront/internal/payments"
	"pizzeria-storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

type checkoutLineItem struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

type checkoutSessionRequest struct {
	LineItems  []checkoutLineItem       `json:"line_items"`
	SuccessURL string                   `json:"success_url"`
	CancelURL  string                   `json:"cancel_url"`
	Mode       string                   `json:"mode"`
	Address    *domain.AddressSelection `json:"address"`
}

// detached keeps request values but drops cancellation, so a client disconnect does
// not abort a provider call that may already have created a session.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *handlers) createCheckoutSession(c *gin.Context) {
	var req checkoutSessionRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	items := make([]payments.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		if li.Price == "" {
			h.fail(c, badRequest("line_items[].price is required"))
			return
		}
		items = append(items, payments.LineItem{PriceRef: li.Price, Quantity: li.Quantity})
	}

	sess, err := h.deps.CheckoutSvc.CreateSession(detached(c), customerFrom(c), checkout.Request{
		LineItems:  items,
		Mode:       req.Mode,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Address:    req.Address,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
