package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addFavoriteRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

func (h *handlers) listFavorites(c *gin.Context) {
	list, err := h.deps.FavoriteSvc.List(c.Request.Context(), customerFrom(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list})
}

func (h *handlers) addFavorite(c *gin.Context) {
	var req addFavoriteRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	f, err := h.deps.FavoriteSvc.Add(c.Request.Context(), customerFrom(c).ID, req.ItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *handlers) removeFavorite(c *gin.Context) {
	if err := h.deps.FavoriteSvc.Remove(c.Request.Context(), customerFrom(c).ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
