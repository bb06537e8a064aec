package service

import (
	"errors"
	"time"

	"github.com/RCodeTree/market-service/internal/model"

	"gorm.io/gorm"
)

// CartService 购物车业务逻辑
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartItemView 购物车条目，带商品当前名称和主图
type CartItemView struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	SkuID     *int64    `json:"skuId"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Selected  bool      `json:"selected"`
	Stock     int       `json:"stock"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type cartRow struct {
	ItemID    int64
	ProductID int64
	SkuID     *int64
	Quantity  int
	Price     float64
	Selected  bool
	CreatedAt time.Time
	Name      string
	MainImage string
	Stock     int
	Status    int
}

type CartListResult struct {
	Items      []CartItemView `json:"items"`
	TotalCount int            `json:"totalCount"`
}

// List 购物车列表，最近加入的排前面
func (s *CartService) List(userID int64) (*CartListResult, error) {
	var rows []cartRow
	err := s.db.Table("cart_items AS c").
		Select("c.id AS item_id, c.product_id, c.sku_id, c.quantity, c.price, c.selected, c.created_at, p.name, p.main_image, p.stock, p.status").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]CartItemView, 0, len(rows))
	totalCount := 0
	for _, r := range rows {
		items = append(items, CartItemView{
			ID:        r.ItemID,
			ProductID: r.ProductID,
			SkuID:     r.SkuID,
			Name:      r.Name,
			Image:     r.MainImage,
			Price:     r.Price,
			Quantity:  r.Quantity,
			Selected:  r.Selected,
			Stock:     r.Stock,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		})
		totalCount += r.Quantity
	}
	return &CartListResult{Items: items, TotalCount: totalCount}, nil
}

type AddCartInput struct {
	ProductID int64  `json:"productId"`
	SkuID     *int64 `json:"skuId"`
	Quantity  int    `json:"quantity"`
}

// Add 加入购物车
// 同一 用户+商品+SKU 已有条目时做数量合并，价格取加购时的商品单价快照
func (s *CartService) Add(userID int64, in AddCartInput) (*model.CartItem, error) {
	if in.ProductID == 0 {
		return nil, badRequest("缺少商品ID")
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	var p model.Product
	if err := s.db.Where("id = ? AND status = 1", in.ProductID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badRequest("商品不存在或已下架")
		}
		return nil, err
	}
	if p.Stock <= 0 {
		return nil, badRequest("商品库存不足")
	}

	var item model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ? AND product_id = ?", userID, in.ProductID)
		if in.SkuID != nil {
			query = query.Where("sku_id = ?", *in.SkuID)
		} else {
			query = query.Where("sku_id IS NULL")
		}

		err := query.First(&item).Error
		if err == nil {
			item.Quantity += in.Quantity
			return tx.Model(&item).Update("quantity", item.Quantity).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item = model.CartItem{
			UserID:    userID,
			ProductID: in.ProductID,
			SkuID:     in.SkuID,
			Quantity:  in.Quantity,
			Price:     p.Price,
			Selected:  true,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity 修改数量，数量归零等价于删除
func (s *CartService) UpdateQuantity(userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(userID, itemID)
	}
	result := s.db.Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("购物车商品不存在")
	}
	return nil
}

// UpdateSelected 勾选/取消勾选
func (s *CartService) UpdateSelected(userID, itemID int64, selected bool) error {
	result := s.db.Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("selected", selected)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("购物车商品不存在")
	}
	return nil
}

// Remove 删除单个条目
func (s *CartService) Remove(userID, itemID int64) error {
	result := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&model.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("购物车商品不存在")
	}
	return nil
}

// BatchRemove 批量删除
func (s *CartService) BatchRemove(userID int64, itemIDs []int64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := s.db.Where("user_id = ? AND id IN ?", userID, itemIDs).Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}

// Clear 清空购物车
func (s *CartService) Clear(userID int64) error {
	return s.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}

// Count 购物车商品总件数，角标用
func (s *CartService) Count(userID int64) (int, error) {
	var total int64
	err := s.db.Model(&model.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}
