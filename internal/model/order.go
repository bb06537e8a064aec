package model

import "time"

// 订单状态枚举
// 状态只沿固定路径单调前进，不会回到之前的状态
const (
	OrderStatusPending   = "pending"   // 待付款
	OrderStatusPaid      = "paid"      // 已付款
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已送达
	OrderStatusCompleted = "completed" // 已完成（终态）
	OrderStatusCancelled = "cancelled" // 已取消（终态）
	OrderStatusRefunding = "refunding" // 退款中
)

// IsTerminalStatus 终态订单才允许删除
func IsTerminalStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// Order 订单主表
// 金额在创建时一次算定，之后商品价格变动不会重算
type Order struct {
	ID        int64  `gorm:"primaryKey"`
	OrderNo   string `gorm:"type:varchar(64);uniqueIndex"`
	UserID    int64  `gorm:"index"`
	OrderType int    `gorm:"type:tinyint;default:1"`
	Status    string `gorm:"type:varchar(20);index"`

	TotalAmount    float64 `gorm:"type:decimal(10,2)"`
	ProductAmount  float64 `gorm:"type:decimal(10,2)"`
	ShippingAmount float64 `gorm:"type:decimal(10,2)"`
	DiscountAmount float64 `gorm:"type:decimal(10,2)"`
	CouponAmount   float64 `gorm:"type:decimal(10,2)"`
	PointsAmount   float64 `gorm:"type:decimal(10,2)"`
	ActualAmount   float64 `gorm:"type:decimal(10,2)"`

	PaymentMethod string     `gorm:"type:varchar(20)"`
	PaymentNo     string     `gorm:"type:varchar(64)"`
	PaymentTime   *time.Time
	ShippingTime  *time.Time
	DeliveryTime  *time.Time

	ReceiverName     string `gorm:"type:varchar(50)"`
	ReceiverPhone    string `gorm:"type:varchar(20)"`
	ReceiverProvince string `gorm:"type:varchar(50)"`
	ReceiverCity     string `gorm:"type:varchar(50)"`
	ReceiverDistrict string `gorm:"type:varchar(50)"`
	ReceiverAddress  string `gorm:"type:varchar(255)"`

	LogisticsCompany string `gorm:"type:varchar(50)"`
	LogisticsNo      string `gorm:"type:varchar(64)"`

	BuyerMessage string `gorm:"type:varchar(500)"`
	CancelReason string `gorm:"type:varchar(255)"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem 订单明细，创建后不可变
type OrderItem struct {
	ID           int64   `gorm:"primaryKey"`
	OrderID      int64   `gorm:"index"`
	ProductID    int64   `gorm:"index"`
	SkuID        *int64
	ProductName  string  `gorm:"type:varchar(100)"` // 下单时的商品名快照
	ProductImage string  `gorm:"type:varchar(255)"`
	SpecInfo     string  `gorm:"type:varchar(500)"` // JSON 键值对
	Price        float64 `gorm:"type:decimal(10,2)"`
	Quantity     int     `gorm:"type:int"`
	TotalAmount  float64 `gorm:"type:decimal(10,2)"`
	CreatedAt    time.Time
}

// OrderStatusLog 订单状态流水，只追加不修改
type OrderStatusLog struct {
	ID           int64  `gorm:"primaryKey"`
	OrderID      int64  `gorm:"index"`
	FromStatus   string `gorm:"type:varchar(20)"` // 创建时为空
	ToStatus     string `gorm:"type:varchar(20)"`
	OperatorType int    `gorm:"type:tinyint;default:1"` // 1 用户 2 管理员 3 系统
	OperatorID   int64
	Remark       string `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
