package controller

import (
	"net/http"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// CartController 购物车相关接口
type CartController struct {
	cart *service.CartService
}

func NewCartController(cart *service.CartService) *CartController {
	return &CartController{cart: cart}
}

// List GET /api/cart
func (c *CartController) List(ctx *gin.Context) {
	result, err := c.cart.List(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取购物车成功", result)
}

// Add POST /api/cart
func (c *CartController) Add(ctx *gin.Context) {
	var req service.AddCartInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	item, err := c.cart.Add(currentUserID(ctx), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Created(ctx, "已添加到购物车", gin.H{"item": item})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity PUT /api/cart/:id
func (c *CartController) UpdateQuantity(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	if err := c.cart.UpdateQuantity(currentUserID(ctx), id, req.Quantity); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "修改成功", nil)
}

type updateSelectedRequest struct {
	Selected bool `json:"selected"`
}

// UpdateSelected PUT /api/cart/:id/selected
func (c *CartController) UpdateSelected(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req updateSelectedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	if err := c.cart.UpdateSelected(currentUserID(ctx), id, req.Selected); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "修改成功", nil)
}

// Remove DELETE /api/cart/:id
func (c *CartController) Remove(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.cart.Remove(currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "删除成功", nil)
}

// BatchRemove DELETE /api/cart/batch
func (c *CartController) BatchRemove(ctx *gin.Context) {
	var req batchRemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	removed, err := c.cart.BatchRemove(currentUserID(ctx), req.IDs)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "批量删除成功", gin.H{"removed": removed})
}

// Clear DELETE /api/cart
func (c *CartController) Clear(ctx *gin.Context) {
	if err := c.cart.Clear(currentUserID(ctx)); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "购物车已清空", nil)
}

// Count GET /api/cart/count
func (c *CartController) Count(ctx *gin.Context) {
	count, err := c.cart.Count(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取购物车数量成功", gin.H{"count": count})
}
