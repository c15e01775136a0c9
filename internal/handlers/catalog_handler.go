package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reseller_hub/internal/services"
)

// CatalogHandler serves the item, reseller and order screens.
type CatalogHandler struct {
	inventory services.InventoryService
	resellers services.ResellerService
	orders    services.OrderService
}

func NewCatalogHandler(
	inventory services.InventoryService,
	resellers services.ResellerService,
	orders services.OrderService,
) *CatalogHandler {
	return &CatalogHandler{
		inventory: inventory,
		resellers: resellers,
		orders:    orders,
	}
}

// Items

func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Resellers

func (h *CatalogHandler) ListResellers(c *gin.Context) {
	resellers, err := h.resellers.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resellers": resellers})
}

func (h *CatalogHandler) GetReseller(c *gin.Context) {
	reseller, err := h.resellers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reseller)
}

func (h *CatalogHandler) CreateReseller(c *gin.Context) {
	var in services.ResellerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	reseller, err := h.resellers.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reseller)
}

func (h *CatalogHandler) UpdateReseller(c *gin.Context) {
	var in services.ResellerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	reseller, err := h.resellers.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reseller)
}

func (h *CatalogHandler) DeleteReseller(c *gin.Context) {
	if err := h.resellers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Orders

func (h *CatalogHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *CatalogHandler) OrderFormOptions(c *gin.Context) {
	opts, err := h.orders.FormOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *CatalogHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *CatalogHandler) CreateOrder(c *gin.Context) {
	var in services.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	order, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *CatalogHandler) UpdateOrder(c *gin.Context) {
	var in services.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *CatalogHandler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
