package service

import (
	"time"

	"github.com/RCodeTree/market-service/internal/model"
)

// FavoriteView 收藏列表条目，关联商品当前信息
type FavoriteView struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	CurrentPrice  float64   `json:"currentPrice"`
	OriginalPrice float64   `json:"originalPrice"`
	Rating        float64   `json:"rating"`
	Status        string    `json:"status"` // available / discontinued
	CreatedAt     time.Time `json:"createdAt"`
}

type favoriteRow struct {
	FavID         int64
	ProductID     int64
	CreatedAt     time.Time
	Name          string
	MainImage     string
	Price         float64
	OriginalPrice float64
	RatingAvg     float64
	Status        int
}

type FavoriteListResult struct {
	Favorites []FavoriteView `json:"favorites"`
	Total     int64          `json:"total"`
}

// ListFavorites 收藏列表，分页 + 排序
func (s *UserService) ListFavorites(userID int64, page, pageSize int, sort string) (*FavoriteListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	var total int64
	if err := s.db.Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := "uf.created_at DESC"
	switch sort {
	case "price_asc":
		orderBy = "p.price ASC"
	case "price_desc":
		orderBy = "p.price DESC"
	case "rating":
		orderBy = "p.rating_avg DESC"
	}

	var rows []favoriteRow
	err := s.db.Table("user_favorites AS uf").
		Select("uf.id AS fav_id, uf.product_id, uf.created_at, p.name, p.main_image, p.price, p.original_price, p.rating_avg, p.status").
		Joins("JOIN products p ON p.id = uf.product_id").
		Where("uf.user_id = ?", userID).
		Order(orderBy).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	favorites := make([]FavoriteView, 0, len(rows))
	for _, r := range rows {
		status := "discontinued"
		if r.Status == 1 {
			status = "available"
		}
		favorites = append(favorites, FavoriteView{
			ID:            r.FavID,
			ProductID:     r.ProductID,
			Name:          r.Name,
			Image:         r.MainImage,
			CurrentPrice:  r.Price,
			OriginalPrice: r.OriginalPrice,
			Rating:        r.RatingAvg,
			Status:        status,
			CreatedAt:     r.CreatedAt,
		})
	}

	return &FavoriteListResult{Favorites: favorites, Total: total}, nil
}

type FavoriteAddResult struct {
	Created bool  `json:"created"`
	ID      int64 `json:"id,omitempty"`
}

// AddFavorite 加入收藏，重复收藏不报错也不插新行
func (s *UserService) AddFavorite(userID, productID int64) (*FavoriteAddResult, error) {
	if productID == 0 {
		return nil, badRequest("缺少商品ID")
	}

	var cnt int64
	if err := s.db.Model(&model.Favorite{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return &FavoriteAddResult{Created: false}, nil
	}

	fav := model.Favorite{UserID: userID, ProductID: productID}
	if err := s.db.Create(&fav).Error; err != nil {
		return nil, err
	}
	return &FavoriteAddResult{Created: true, ID: fav.ID}, nil
}

// RemoveFavorite 取消收藏
func (s *UserService) RemoveFavorite(userID, favoriteID int64) error {
	return s.db.Where("id = ? AND user_id = ?", favoriteID, userID).Delete(&model.Favorite{}).Error
}

// BatchRemoveFavorites 批量取消收藏
func (s *UserService) BatchRemoveFavorites(userID int64, favoriteIDs []int64) (int64, error) {
	if len(favoriteIDs) == 0 {
		return 0, nil
	}
	result := s.db.Where("user_id = ? AND id IN ?", userID, favoriteIDs).Delete(&model.Favorite{})
	return result.RowsAffected, result.Error
}
