package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListByUser(c.Request.Context(), customerFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) popularRecommendations(c *gin.Context) {
	names, err := h.deps.RecommendSvc.Popular(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (h *handlers) myRecommendations(c *gin.Context) {
	recs, err := h.deps.RecommendSvc.ForUser(c.Request.Context(), customerFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
