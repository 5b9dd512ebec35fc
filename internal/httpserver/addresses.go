package httpserver

import (
	"net/http"

	addresssvc "pizzeria-storefront/internal/service/address"

	"github.com/gin-gonic/gin"
)

func (h *handlers) listAddresses(c *gin.Context) {
	list, err := h.deps.AddressSvc.List(c.Request.Context(), customerFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

func (h *handlers) createAddress(c *gin.Context) {
	var in addresssvc.Input
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	a, err := h.deps.AddressSvc.Create(c.Request.Context(), customerFrom(c).ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) updateAddress(c *gin.Context) {
	var in addresssvc.Input
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	a, err := h.deps.AddressSvc.Update(c.Request.Context(), customerFrom(c).ID, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	if err := h.deps.AddressSvc.Delete(c.Request.Context(), customerFrom(c).ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) setDefaultAddress(c *gin.Context) {
	if err := h.deps.AddressSvc.SetDefault(c.Request.Context(), customerFrom(c).ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
