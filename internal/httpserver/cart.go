package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type mergeRequest struct {
	AnonymousID string `json:"anonymousId" binding:"required"`
}

func getCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), c.Param("ownerKey"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func deleteCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("ownerKey")); err != nil {
			respondError(c, logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func addItemHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		cart, err := svc.Add(c.Request.Context(), c.Param("ownerKey"), req.ProductID, req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func updateItemHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
			return
		}
		cart, err := svc.SetQuantity(c.Request.Context(), c.Param("ownerKey"), c.Param("productId"), *req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeItemHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Remove(c.Request.Context(), c.Param("ownerKey"), c.Param("productId"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Clear(c.Request.Context(), c.Param("ownerKey"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func checkoutHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Checkout(c.Request.Context(), c.Param("ownerKey"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

func mergeCartHandler(svc CartService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mergeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "anonymousId is required"})
			return
		}
		cart, err := svc.MergeAnonymous(c.Request.Context(), c.Param("ownerKey"), req.AnonymousID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func listProductsHandler(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 20)
		offset := queryInt(c, "offset", 0)
		if limit < 1 || limit > 200 {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		products, err := catalog.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "limit": limit, "offset": offset})
	}
}

func getProductHandler(catalog ProductCatalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := catalog.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return def
	}
	return n
}
