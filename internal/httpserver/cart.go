package httpserver

import (
	"net/http"

	"pizzeria-storefront/internal/domain"
	cartsvc "pizzeria-storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	SessionID string            `json:"sessionId"`
	Lines     []domain.CartLine `json:"lines"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	if cart == nil {
		cart = &domain.Cart{}
	}
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		SessionID: cart.SessionID,
		Lines:     lines,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
}

type addItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

type changeQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type cartCheckoutRequest struct {
	Address *domain.AddressSelection `json:"address"`
}

func (h *handlers) issueCartSession(c *gin.Context) {
	token, sessionID, err := h.deps.CartSessions.Issue(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":      token,
		"sessionId":  sessionID,
		"expires_in": h.deps.CartSessions.TTLSeconds(),
	})
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), cartSessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) updateCart(c *gin.Context) {
	var req cartsvc.UpdateInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	cart, err := h.deps.CartSvc.Apply(c.Request.Context(), cartSessionFrom(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	cart, err := h.deps.CartSvc.AddItem(c.Request.Context(), cartSessionFrom(c), req.ItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) changeCartItem(c *gin.Context) {
	var req changeQuantityRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	cart, err := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), cartSessionFrom(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	cart, err := h.deps.CartSvc.Remove(c.Request.Context(), cartSessionFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.CartSvc.Clear(c.Request.Context(), cartSessionFrom(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// checkoutCart starts a checkout from the session cart. The cart stays in place until
// the payment is confirmed, so a cancelled checkout returns to a full cart.
func (h *handlers) checkoutCart(c *gin.Context) {
	var req cartCheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			h.fail(c, err)
			return
		}
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), cartSessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	sess, err := h.deps.CheckoutSvc.CheckoutCart(detached(c), customerFrom(c), cart, req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
