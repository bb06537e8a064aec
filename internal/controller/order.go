package controller

import (
	"net/http"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderController 订单相关接口
type OrderController struct {
	orders *service.OrderService
}

func NewOrderController(orders *service.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Create POST /api/orders
func (c *OrderController) Create(ctx *gin.Context) {
	var req service.CreateOrderInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	order, err := c.orders.Create(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Created(ctx, "订单创建成功", gin.H{"order": order})
}

// List GET /api/orders
func (c *OrderController) List(ctx *gin.Context) {
	q := service.OrderListQuery{
		Status:    ctx.Query("status"),
		Keyword:   ctx.Query("keyword"),
		StartDate: ctx.Query("startDate"),
		EndDate:   ctx.Query("endDate"),
		Sort:      ctx.Query("sort"),
		Page:      queryInt(ctx, "page", 1),
		PageSize:  queryInt(ctx, "pageSize", 10),
	}

	result, err := c.orders.List(currentUserID(ctx), q)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取订单列表成功", result)
}

// ListWithCounts GET /api/user/orders
// 用户中心：订单列表 + 各状态数量角标
func (c *OrderController) ListWithCounts(ctx *gin.Context) {
	userID := currentUserID(ctx)
	q := service.OrderListQuery{
		Status:   ctx.Query("status"),
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "pageSize", 10),
	}

	result, err := c.orders.List(userID, q)
	if err != nil {
		fail(ctx, err)
		return
	}
	counts, err := c.orders.StatusCounts(userID)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取订单列表成功", gin.H{
		"orders":       result.Orders,
		"total":        result.Total,
		"page":         result.Page,
		"pageSize":     result.PageSize,
		"statusCounts": counts,
	})
}

// Stats GET /api/orders/stats
func (c *OrderController) Stats(ctx *gin.Context) {
	counts, err := c.orders.StatusCounts(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取订单统计成功", gin.H{"statusCounts": counts})
}

// Detail GET /api/orders/:id
func (c *OrderController) Detail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	order, err := c.orders.Get(currentUserID(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取订单详情成功", gin.H{"order": order})
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Cancel POST /api/orders/:id/cancel
func (c *OrderController) Cancel(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req cancelOrderRequest
	_ = ctx.ShouldBindJSON(&req)

	if err := c.orders.Cancel(ctx.Request.Context(), currentUserID(ctx), id, req.Reason); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "订单已取消", nil)
}

// Pay POST /api/orders/:id/pay
func (c *OrderController) Pay(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.PayInput
	_ = ctx.ShouldBindJSON(&req)

	order, err := c.orders.Pay(ctx.Request.Context(), currentUserID(ctx), id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "支付成功", gin.H{"order": order})
}

// PaymentStatus GET /api/orders/:id/payment-status
func (c *OrderController) PaymentStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.orders.PaymentStatus(ctx.Request.Context(), currentUserID(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取支付状态成功", result)
}

// ConfirmReceive POST /api/orders/:id/confirm
func (c *OrderController) ConfirmReceive(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.orders.ConfirmReceive(ctx.Request.Context(), currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "确认收货成功", nil)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// RequestRefund POST /api/orders/:id/refund
func (c *OrderController) RequestRefund(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req refundRequest
	_ = ctx.ShouldBindJSON(&req)

	if err := c.orders.RequestRefund(ctx.Request.Context(), currentUserID(ctx), id, req.Reason); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "申请退款成功", nil)
}

// RemindShipping POST /api/orders/:id/remind-shipping
func (c *OrderController) RemindShipping(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.orders.RemindShipping(currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "已提醒商家发货", nil)
}

// Delete DELETE /api/orders/:id
func (c *OrderController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.orders.Delete(currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "订单已删除", nil)
}
