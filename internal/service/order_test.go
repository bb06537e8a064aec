package service

import (
	"context"
	"strings"
	"testing"

	"github.com/RCodeTree/market-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShippingAddress() ShippingAddressInput {
	return ShippingAddressInput{
		RecipientName: "张三",
		Phone:         "13800138000",
		Province:      "广东省",
		City:          "深圳市",
		District:      "南山区",
		DetailAddress: "科技园路1号",
	}
}

func TestOrderCreate(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", MainImage: "kb.png", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: p.ID, Price: 50, Quantity: 2},
		},
		ShippingAddress: validShippingAddress(),
		ShippingFee:     10,
		DiscountAmount:  5,
	})
	require.NoError(t, err)

	// 100 + 10 - 5 = 105
	assert.Equal(t, 105.0, order.TotalAmount)
	assert.Equal(t, 105.0, order.ActualAmount)
	assert.Equal(t, 100.0, order.ProductAmount)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "NB"))
	assert.Equal(t, 2, order.TotalItems)

	// 商品名和主图按下单时的值做快照
	require.Len(t, order.Items, 1)
	assert.Equal(t, "机械键盘", order.Items[0].Product.Name)
	assert.Equal(t, "kb.png", order.Items[0].Product.Image)

	// 创建时写一条 "" -> pending 的状态流水
	var logs []model.OrderStatusLog
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "", logs[0].FromStatus)
	assert.Equal(t, model.OrderStatusPending, logs[0].ToStatus)

	// 库存只校验不扣减
	var stock int
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", p.ID).Select("stock").Scan(&stock).Error)
	assert.Equal(t, 10, stock)
}

func TestOrderCreateValidation(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 1})

	cases := []struct {
		name string
		in   CreateOrderInput
		msg  string
	}{
		{
			"空商品列表",
			CreateOrderInput{ShippingAddress: validShippingAddress()},
			"订单商品不能为空",
		},
		{
			"收货信息不完整",
			CreateOrderInput{
				Items:           []OrderItemInput{{ProductID: p.ID, Price: 10, Quantity: 1}},
				ShippingAddress: ShippingAddressInput{RecipientName: "张三"},
			},
			"收货信息不完整，请填写完整的收货信息",
		},
		{
			"手机号非法",
			CreateOrderInput{
				Items: []OrderItemInput{{ProductID: p.ID, Price: 10, Quantity: 1}},
				ShippingAddress: func() ShippingAddressInput {
					a := validShippingAddress()
					a.Phone = "12345"
					return a
				}(),
			},
			"手机号格式不正确",
		},
		{
			"数量非法",
			CreateOrderInput{
				Items:           []OrderItemInput{{ProductID: p.ID, Price: 10, Quantity: 0}},
				ShippingAddress: validShippingAddress(),
			},
			"订单商品信息不合法",
		},
		{
			"价格为负",
			CreateOrderInput{
				Items:           []OrderItemInput{{ProductID: p.ID, Price: -1, Quantity: 1}},
				ShippingAddress: validShippingAddress(),
			},
			"订单商品价格不合法",
		},
		{
			"商品不存在",
			CreateOrderInput{
				Items:           []OrderItemInput{{ProductID: 9999, Price: 10, Quantity: 1}},
				ShippingAddress: validShippingAddress(),
			},
			"商品不存在或已下架",
		},
		{
			"库存不足",
			CreateOrderInput{
				Items:           []OrderItemInput{{ProductID: p.ID, Price: 10, Quantity: 5}},
				ShippingAddress: validShippingAddress(),
			},
			"商品库存不足或已下架",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), 1, tc.in)
			require.Error(t, err)
			assert.EqualError(t, err, tc.msg)
		})
	}

	// 校验失败时整个事务回滚，不留半截订单
	var cnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&cnt).Error)
	assert.Equal(t, int64(0), cnt)
}

func TestOrderCreateClampsNegativeFees(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 100, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
		ShippingFee:     -10,
		DiscountAmount:  -5,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.TotalAmount)
	assert.Equal(t, 0.0, order.ShippingFee)
}

func TestOrderCreateRemovesCartItems(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, nil, nil)
	cart := NewCartService(db)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	item, err := cart.Add(1, AddCartInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = orders.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 2}},
		ShippingAddress: validShippingAddress(),
		CartItemIDs:     []int64{item.ID},
	})
	require.NoError(t, err)

	count, err := cart.Count(1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderPay(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	paid, err := s.Pay(context.Background(), 1, order.ID, PayInput{})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentInfo)
	assert.Equal(t, "alipay", paid.PaymentInfo.Method)
	assert.True(t, strings.HasPrefix(paid.PaymentInfo.TransactionID, "PAY"))
	assert.NotNil(t, paid.PaidAt)

	// 重复支付被拒
	_, err = s.Pay(context.Background(), 1, order.ID, PayInput{})
	require.Error(t, err)
	assert.EqualError(t, err, "当前订单状态不可支付")
}

func TestOrderCancelOnlyPending(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	_, err = s.Pay(context.Background(), 1, order.ID, PayInput{})
	require.NoError(t, err)

	err = s.Cancel(context.Background(), 1, order.ID, "不想要了")
	require.Error(t, err)
	assert.EqualError(t, err, "仅待付款订单可取消")

	// 状态未被改动
	got, err := s.Get(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)
}

func TestOrderCancelPending(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	require.NoError(t, s.Cancel(context.Background(), 1, order.ID, "不想要了"))

	got, err := s.Get(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, got.Status)
	assert.Equal(t, "不想要了", got.CancelReason)

	var logs []model.OrderStatusLog
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, model.OrderStatusPending, logs[1].FromStatus)
	assert.Equal(t, model.OrderStatusCancelled, logs[1].ToStatus)
}

func TestOrderConfirmReceiveOnlyShipped(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	err = s.ConfirmReceive(context.Background(), 1, order.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "当前订单状态不可确认收货")

	_, err = s.Pay(context.Background(), 1, order.ID, PayInput{})
	require.NoError(t, err)
	require.NoError(t, s.MarkShipped(context.Background(), 1, order.ID, "顺丰", "SF123456"))
	require.NoError(t, s.ConfirmReceive(context.Background(), 1, order.ID))

	got, err := s.Get(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, got.Status)
	assert.Equal(t, "顺丰", got.ShippingCompany)
	assert.Equal(t, "SF123456", got.TrackingNumber)
	assert.NotNil(t, got.DeliveredAt)
}

func TestOrderRequestRefundFromAnyStatus(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	require.NoError(t, s.RequestRefund(context.Background(), 1, order.ID, "质量问题"))

	got, err := s.Get(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunding, got.Status)

	var logs []model.OrderStatusLog
	require.NoError(t, db.Where("order_id = ? AND to_status = ?", order.ID, model.OrderStatusRefunding).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Remark, "质量问题")
}

func TestOrderDeleteOnlyTerminal(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	err = s.Delete(1, order.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "仅已完成或已取消的订单可删除")

	require.NoError(t, s.Cancel(context.Background(), 1, order.ID, ""))
	require.NoError(t, s.Delete(1, order.ID))

	// 订单和明细一起删除，不留孤儿行
	var orderCnt, itemCnt int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orderCnt).Error)
	require.NoError(t, db.Model(&model.OrderItem{}).Count(&itemCnt).Error)
	assert.Equal(t, int64(0), orderCnt)
	assert.Equal(t, int64(0), itemCnt)
}

func TestOrderGetDeniesOtherUsers(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 299, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	_, err = s.Get(2, order.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "订单不存在或无权限")
}

func TestOrderListFilters(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	o1, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 100, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 200, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)
	_, err = s.Pay(context.Background(), 1, o1.ID, PayInput{})
	require.NoError(t, err)

	result, err := s.List(1, OrderListQuery{Status: model.OrderStatusPaid})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, o1.ID, result.Orders[0].ID)

	result, err = s.List(1, OrderListQuery{Keyword: o1.OrderNumber})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	result, err = s.List(1, OrderListQuery{Sort: "amount_desc"})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, 200.0, result.Orders[0].ActualAmount)
}

func TestOrderStatusCounts(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	o1, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 100, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 100, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)
	_, err = s.Pay(context.Background(), 1, o1.ID, PayInput{})
	require.NoError(t, err)

	counts, err := s.StatusCounts(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.OrderStatusPending])
	assert.Equal(t, int64(1), counts[model.OrderStatusPaid])
	assert.Equal(t, int64(0), counts[model.OrderStatusCancelled])
}

func TestOrderPaymentStatus(t *testing.T) {
	db := newTestDB(t)
	s := NewOrderService(db, nil, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	order, err := s.Create(context.Background(), 1, CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: p.ID, Price: 100, Quantity: 1}},
		ShippingAddress: validShippingAddress(),
	})
	require.NoError(t, err)

	status, err := s.PaymentStatus(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.False(t, status.Paid)
	assert.Equal(t, model.OrderStatusPending, status.Status)

	_, err = s.Pay(context.Background(), 1, order.ID, PayInput{})
	require.NoError(t, err)

	status, err = s.PaymentStatus(context.Background(), 1, order.ID)
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.Equal(t, model.OrderStatusPaid, status.Status)
}

func TestParseSpecInfo(t *testing.T) {
	assert.Equal(t, map[string]string{"颜色": "红", "尺寸": "L"}, parseSpecInfo(`{"颜色":"红","尺寸":"L"}`))
	assert.Equal(t, map[string]string{"颜色": "红", "尺寸": "L"}, parseSpecInfo("颜色:红, 尺寸:L"))
	assert.Empty(t, parseSpecInfo(""))
}
