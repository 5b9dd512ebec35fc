package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"pizzeria-storefront/internal/apperr"
	"pizzeria-storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

var errMenuItemNotFound = apperr.New(apperr.CodeNotFound, "menu item not found")

func (h *handlers) listMenu(c *gin.Context) {
	items, err := h.deps.ProductSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []domain.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *handlers) getMenuItem(c *gin.Context) {
	item, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = errMenuItemNotFound
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
