package model

import "time"

// CartItem 购物车条目
// 同一 user_id + product_id + sku_id 组合只保留一行，重复加购做数量合并
type CartItem struct {
	ID        int64   `gorm:"primaryKey"`
	UserID    int64   `gorm:"index;not null"`
	ProductID int64   `gorm:"index;not null"`
	SkuID     *int64  `gorm:"index"`
	Quantity  int     `gorm:"not null;default:1"`
	Price     float64 `gorm:"type:decimal(10,2)"` // 加购时的商品单价快照
	Selected  bool    `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItem) TableName() string {
	return "cart_items"
}
