package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/RCodeTree/market-service/internal/model"
	"github.com/RCodeTree/market-service/pkg/mq"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 支付状态缓存，减轻支付结果轮询对数据库的压力
const payStatusCacheTTL = 30 * time.Second

func payStatusCacheKey(orderID int64) string {
	return fmt.Sprintf("order:paystatus:%d", orderID)
}

// statusTransitions 订单状态机
// 键是目标状态，值是允许的来源状态；nil 表示任意状态都可进入
var statusTransitions = map[string][]string{
	model.OrderStatusPaid:      {model.OrderStatusPending},
	model.OrderStatusCancelled: {model.OrderStatusPending},
	model.OrderStatusShipped:   {model.OrderStatusPaid},
	model.OrderStatusDelivered: {model.OrderStatusShipped},
	model.OrderStatusCompleted: {model.OrderStatusDelivered},
	model.OrderStatusRefunding: nil,
}

func canTransition(from, to string) bool {
	allowed, ok := statusTransitions[to]
	if !ok {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if s == from {
			return true
		}
	}
	return false
}

// OrderService 订单业务逻辑
type OrderService struct {
	db  *gorm.DB
	rdb *redis.Client // 可为 nil，支付状态缓存退化为直查数据库
	mq  *mq.Publisher // 可为 nil，状态变更事件不发送
}

func NewOrderService(db *gorm.DB, rdb *redis.Client, pub *mq.Publisher) *OrderService {
	return &OrderService{db: db, rdb: rdb, mq: pub}
}

type OrderItemInput struct {
	ProductID int64   `json:"productId"`
	SkuID     *int64  `json:"skuId"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	SpecInfo  string  `json:"specifications"`
}

type ShippingAddressInput struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detailAddress"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput     `json:"items"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
	ShippingFee     float64              `json:"shippingFee"`
	DiscountAmount  float64              `json:"discountAmount"`
	CouponAmount    float64              `json:"couponAmount"`
	PointsAmount    float64              `json:"pointsAmount"`
	BuyerMessage    string               `json:"buyerMessage"`
	CartItemIDs     []int64              `json:"cartItemIds"` // 下单成功后从购物车移除这些条目
}

// generateOrderNo 订单号：NB + 毫秒时间戳 + 4 位随机数
func generateOrderNo() string {
	return fmt.Sprintf("NB%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// Create 创建订单
// 校验、落库、清购物车在同一事务里完成；库存只校验不扣减，留到支付环节
func (s *OrderService) Create(ctx context.Context, userID int64, in CreateOrderInput) (*OrderView, error) {
	if len(in.Items) == 0 {
		return nil, badRequest("订单商品不能为空")
	}
	addr := in.ShippingAddress
	if addr.RecipientName == "" || addr.Phone == "" || addr.Province == "" ||
		addr.City == "" || addr.District == "" || addr.DetailAddress == "" {
		return nil, badRequest("收货信息不完整，请填写完整的收货信息")
	}
	if !phoneRe.MatchString(addr.Phone) {
		return nil, badRequest("手机号格式不正确")
	}

	// 负数费用视为 0
	shippingFee := clampNonNegative(in.ShippingFee)
	discount := clampNonNegative(in.DiscountAmount)
	coupon := clampNonNegative(in.CouponAmount)
	points := clampNonNegative(in.PointsAmount)

	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		productAmount := 0.0
		items := make([]model.OrderItem, 0, len(in.Items))

		for _, it := range in.Items {
			if it.ProductID == 0 || it.Quantity < 1 {
				return badRequest("订单商品信息不合法")
			}
			if it.Price < 0 {
				return badRequest("订单商品价格不合法")
			}

			var p model.Product
			if err := tx.Where("id = ? AND status = 1", it.ProductID).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return badRequest("商品不存在或已下架")
				}
				return err
			}
			if p.Stock < it.Quantity {
				return badRequest("商品库存不足或已下架")
			}

			lineTotal := it.Price * float64(it.Quantity)
			productAmount += lineTotal
			items = append(items, model.OrderItem{
				ProductID:    it.ProductID,
				SkuID:        it.SkuID,
				ProductName:  p.Name,
				ProductImage: p.MainImage,
				SpecInfo:     it.SpecInfo,
				Price:        it.Price,
				Quantity:     it.Quantity,
				TotalAmount:  lineTotal,
			})
		}

		total := productAmount + shippingFee - discount - coupon - points

		order = model.Order{
			OrderNo:          generateOrderNo(),
			UserID:           userID,
			OrderType:        1,
			Status:           model.OrderStatusPending,
			TotalAmount:      total,
			ProductAmount:    productAmount,
			ShippingAmount:   shippingFee,
			DiscountAmount:   discount,
			CouponAmount:     coupon,
			PointsAmount:     points,
			ActualAmount:     total,
			ReceiverName:     addr.RecipientName,
			ReceiverPhone:    addr.Phone,
			ReceiverProvince: addr.Province,
			ReceiverCity:     addr.City,
			ReceiverDistrict: addr.District,
			ReceiverAddress:  addr.DetailAddress,
			BuyerMessage:     in.BuyerMessage,
			Items:            items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		statusLog := model.OrderStatusLog{
			OrderID:      order.ID,
			FromStatus:   "",
			ToStatus:     model.OrderStatusPending,
			OperatorType: 1,
			OperatorID:   userID,
			Remark:       "订单创建",
		}
		if err := tx.Create(&statusLog).Error; err != nil {
			return err
		}

		if len(in.CartItemIDs) > 0 {
			if err := tx.Where("user_id = ? AND id IN ?", userID, in.CartItemIDs).Delete(&model.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, &order, "", model.OrderStatusPending)
	view := toOrderView(&order)
	return &view, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// publishEvent 尽力发布订单状态事件，失败只记日志
func (s *OrderService) publishEvent(ctx context.Context, order *model.Order, from, to string) {
	if s.mq == nil {
		return
	}
	event := map[string]interface{}{
		"orderId": order.ID,
		"orderNo": order.OrderNo,
		"from":    from,
		"to":      to,
	}
	if err := s.mq.Publish(ctx, to, event); err != nil {
		log.Printf("发布订单事件失败 order=%s: %v", order.OrderNo, err)
	}
}

type OrderListQuery struct {
	Status    string
	Keyword   string // 订单号或收货人模糊匹配
	StartDate string // YYYY-MM-DD
	EndDate   string
	Sort      string // created_desc / created_asc / amount_desc / amount_asc
	Page      int
	PageSize  int
}

type OrderListResult struct {
	Orders   []OrderView `json:"orders"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// List 订单列表
func (s *OrderService) List(userID int64, q OrderListQuery) (*OrderListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	query := s.db.Model(&model.Order{}).Where("user_id = ?", userID)
	if q.Status != "" && q.Status != "all" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		query = query.Where("order_no LIKE ? OR receiver_name LIKE ?", like, like)
	}
	if q.StartDate != "" {
		query = query.Where("created_at >= ?", q.StartDate+" 00:00:00")
	}
	if q.EndDate != "" {
		query = query.Where("created_at <= ?", q.EndDate+" 23:59:59")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	switch q.Sort {
	case "created_asc":
		query = query.Order("created_at ASC")
	case "amount_desc":
		query = query.Order("actual_amount DESC")
	case "amount_asc":
		query = query.Order("actual_amount ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var orders []model.Order
	err := query.Preload("Items").
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	return &OrderListResult{Orders: views, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// Get 订单详情，只允许查自己的订单
func (s *OrderService) Get(userID, orderID int64) (*OrderView, error) {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return nil, err
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *OrderService) loadOrder(db *gorm.DB, userID, orderID int64) (*model.Order, error) {
	var order model.Order
	err := db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("订单不存在或无权限")
		}
		return nil, err
	}
	return &order, nil
}

// updateStatus 在一个事务里更新状态、写状态流水、更新附加字段
func (s *OrderService) updateStatus(ctx context.Context, order *model.Order, to string, operatorType int, operatorID int64, remark string, extra map[string]interface{}) error {
	from := order.Status
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		for k, v := range extra {
			updates[k] = v
		}
		if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		statusLog := model.OrderStatusLog{
			OrderID:      order.ID,
			FromStatus:   from,
			ToStatus:     to,
			OperatorType: operatorType,
			OperatorID:   operatorID,
			Remark:       remark,
		}
		return tx.Create(&statusLog).Error
	})
	if err != nil {
		return err
	}
	order.Status = to
	s.publishEvent(ctx, order, from, to)
	return nil
}

// Cancel 取消订单，仅待付款可取消
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64, reason string) error {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return err
	}
	if !canTransition(order.Status, model.OrderStatusCancelled) {
		return badRequest("仅待付款订单可取消")
	}
	return s.updateStatus(ctx, order, model.OrderStatusCancelled, 1, userID, "用户取消订单", map[string]interface{}{
		"cancel_reason": reason,
	})
}

type PayInput struct {
	PaymentMethod string `json:"paymentMethod"`
}

// Pay 模拟支付，置为已付款并生成支付流水号
func (s *OrderService) Pay(ctx context.Context, userID, orderID int64, in PayInput) (*OrderView, error) {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(order.Status, model.OrderStatusPaid) {
		return nil, badRequest("当前订单状态不可支付")
	}

	method := in.PaymentMethod
	if method == "" {
		method = "alipay"
	}
	now := time.Now()
	paymentNo := fmt.Sprintf("PAY%d", now.UnixNano())

	err = s.updateStatus(ctx, order, model.OrderStatusPaid, 1, userID, "用户支付成功", map[string]interface{}{
		"payment_method": method,
		"payment_no":     paymentNo,
		"payment_time":   now,
	})
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = method
	order.PaymentNo = paymentNo
	order.PaymentTime = &now

	s.invalidatePayStatusCache(ctx, orderID)

	view := toOrderView(order)
	return &view, nil
}

// ConfirmReceive 确认收货，仅已发货可确认
func (s *OrderService) ConfirmReceive(ctx context.Context, userID, orderID int64) error {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return err
	}
	if !canTransition(order.Status, model.OrderStatusDelivered) {
		return badRequest("当前订单状态不可确认收货")
	}
	now := time.Now()
	return s.updateStatus(ctx, order, model.OrderStatusDelivered, 1, userID, "用户确认收货", map[string]interface{}{
		"delivery_time": now,
	})
}

// RequestRefund 申请退款，任意状态可发起
func (s *OrderService) RequestRefund(ctx context.Context, userID, orderID int64, reason string) error {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return err
	}
	remark := "用户申请退款"
	if reason != "" {
		remark = remark + ": " + reason
	}
	if err := s.updateStatus(ctx, order, model.OrderStatusRefunding, 1, userID, remark, nil); err != nil {
		return err
	}
	s.invalidatePayStatusCache(ctx, orderID)
	return nil
}

// MarkShipped 标记发货，管理员操作
func (s *OrderService) MarkShipped(ctx context.Context, userID, orderID int64, company, logisticsNo string) error {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return err
	}
	if !canTransition(order.Status, model.OrderStatusShipped) {
		return badRequest("当前订单状态不可发货")
	}
	now := time.Now()
	return s.updateStatus(ctx, order, model.OrderStatusShipped, 2, userID, "订单已发货", map[string]interface{}{
		"shipping_time":     now,
		"logistics_company": company,
		"logistics_no":      logisticsNo,
	})
}

// Delete 删除订单，仅终态订单可删，明细一并删除
func (s *OrderService) Delete(userID, orderID int64) error {
	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return err
	}
	if !model.IsTerminalStatus(order.Status) {
		return badRequest("仅已完成或已取消的订单可删除")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Order{}, order.ID).Error
	})
}

// RemindShipping 提醒发货，目前只确认订单存在
func (s *OrderService) RemindShipping(userID, orderID int64) error {
	_, err := s.loadOrder(s.db, userID, orderID)
	return err
}

type PaymentStatusResult struct {
	Paid   bool   `json:"paid"`
	Status string `json:"status"`
}

// PaymentStatus 支付状态查询，走 Redis 短缓存
func (s *OrderService) PaymentStatus(ctx context.Context, userID, orderID int64) (*PaymentStatusResult, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, payStatusCacheKey(orderID)).Result(); err == nil {
			var result PaymentStatusResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	order, err := s.loadOrder(s.db, userID, orderID)
	if err != nil {
		return nil, err
	}

	paid := order.Status != model.OrderStatusPending && order.Status != model.OrderStatusCancelled
	result := &PaymentStatusResult{Paid: paid, Status: order.Status}

	if s.rdb != nil {
		if buf, err := json.Marshal(result); err == nil {
			if err := s.rdb.Set(ctx, payStatusCacheKey(orderID), buf, payStatusCacheTTL).Err(); err != nil {
				log.Printf("写支付状态缓存失败 order=%d: %v", orderID, err)
			}
		}
	}
	return result, nil
}

func (s *OrderService) invalidatePayStatusCache(ctx context.Context, orderID int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, payStatusCacheKey(orderID)).Err(); err != nil {
		log.Printf("清支付状态缓存失败 order=%d: %v", orderID, err)
	}
}

// StatusCounts 各状态订单数，用户中心角标用
func (s *OrderService) StatusCounts(userID int64) (map[string]int64, error) {
	type row struct {
		Status string
		Cnt    int64
	}
	var rows []row
	err := s.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{
		model.OrderStatusPending:   0,
		model.OrderStatusPaid:      0,
		model.OrderStatusShipped:   0,
		model.OrderStatusDelivered: 0,
		model.OrderStatusCompleted: 0,
		model.OrderStatusCancelled: 0,
		model.OrderStatusRefunding: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Cnt
	}
	return counts, nil
}

// OrderView 订单对外视图
type OrderView struct {
	ID              int64                `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	UserID          int64                `json:"userId"`
	OrderType       int                  `json:"orderType"`
	Status          string               `json:"status"`
	TotalAmount     float64              `json:"totalAmount"`
	ProductAmount   float64              `json:"productAmount"`
	ShippingFee     float64              `json:"shippingFee"`
	DiscountAmount  float64              `json:"discountAmount"`
	CouponAmount    float64              `json:"couponAmount"`
	PointsAmount    float64              `json:"pointsAmount"`
	ActualAmount    float64              `json:"actualAmount"`
	PaymentInfo     *PaymentInfoView     `json:"paymentInfo"`
	PaidAt          *time.Time           `json:"paidAt"`
	ShippedAt       *time.Time           `json:"shippedAt"`
	DeliveredAt     *time.Time           `json:"deliveredAt"`
	CreatedAt       time.Time            `json:"createdAt"`
	ShippingAddress ShippingAddressView  `json:"shippingAddress"`
	ShippingCompany string               `json:"shippingCompany"`
	TrackingNumber  string               `json:"trackingNumber"`
	BuyerMessage    string               `json:"buyerMessage"`
	CancelReason    string               `json:"cancelReason,omitempty"`
	Items           []OrderItemView      `json:"items"`
	TotalItems      int                  `json:"totalItems"`
}

type PaymentInfoView struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

type ShippingAddressView struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detailAddress"`
}

type OrderItemView struct {
	ID             int64             `json:"id"`
	OrderID        int64             `json:"orderId"`
	ProductID      int64             `json:"productId"`
	SkuID          *int64            `json:"skuId"`
	Product        OrderItemProduct  `json:"product"`
	Specifications map[string]string `json:"specifications"`
	Price          float64           `json:"price"`
	Quantity       int               `json:"quantity"`
}

type OrderItemProduct struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func toOrderView(o *model.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	totalItems := 0
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			SkuID:     it.SkuID,
			Product: OrderItemProduct{
				Name:  it.ProductName,
				Image: it.ProductImage,
			},
			Specifications: parseSpecInfo(it.SpecInfo),
			Price:          it.Price,
			Quantity:       it.Quantity,
		})
		totalItems += it.Quantity
	}

	var payment *PaymentInfoView
	if o.PaymentMethod != "" {
		payment = &PaymentInfoView{Method: o.PaymentMethod, TransactionID: o.PaymentNo}
	}

	return OrderView{
		ID:             o.ID,
		OrderNumber:    o.OrderNo,
		UserID:         o.UserID,
		OrderType:      o.OrderType,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		ProductAmount:  o.ProductAmount,
		ShippingFee:    o.ShippingAmount,
		DiscountAmount: o.DiscountAmount,
		CouponAmount:   o.CouponAmount,
		PointsAmount:   o.PointsAmount,
		ActualAmount:   o.ActualAmount,
		PaymentInfo:    payment,
		PaidAt:         o.PaymentTime,
		ShippedAt:      o.ShippingTime,
		DeliveredAt:    o.DeliveryTime,
		CreatedAt:      o.CreatedAt,
		ShippingAddress: ShippingAddressView{
			RecipientName: o.ReceiverName,
			Phone:         o.ReceiverPhone,
			Province:      o.ReceiverProvince,
			City:          o.ReceiverCity,
			District:      o.ReceiverDistrict,
			DetailAddress: o.ReceiverAddress,
		},
		ShippingCompany: o.LogisticsCompany,
		TrackingNumber:  o.LogisticsNo,
		BuyerMessage:    o.BuyerMessage,
		CancelReason:    o.CancelReason,
		Items:           items,
		TotalItems:      totalItems,
	}
}

// parseSpecInfo 解析规格快照
// 优先按 JSON 解析，兼容旧数据里 "颜色:红,尺寸:L" 的写法
func parseSpecInfo(raw string) map[string]string {
	specs := map[string]string{}
	if raw == "" {
		return specs
	}
	if err := json.Unmarshal([]byte(raw), &specs); err == nil {
		return specs
	}
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) == 2 {
			specs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return specs
}
