package service

import (
	"testing"

	"github.com/RCodeTree/market-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavoriteIdempotent(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)
	p := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})

	first, err := s.AddFavorite(1, p.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := s.AddFavorite(1, p.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)

	var cnt int64
	require.NoError(t, db.Model(&model.Favorite{}).Where("user_id = ?", 1).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestListFavorites(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)
	cheap := seedProduct(t, db, model.Product{Name: "鼠标垫", Price: 19, Stock: 10})
	dear := seedProduct(t, db, model.Product{Name: "机械键盘", Price: 299, Stock: 10})
	off := seedProduct(t, db, model.Product{Name: "绝版手办", Price: 999, Stock: 0})
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", off.ID).Update("status", 0).Error)

	for _, id := range []int64{cheap.ID, dear.ID, off.ID} {
		_, err := s.AddFavorite(1, id)
		require.NoError(t, err)
	}

	result, err := s.ListFavorites(1, 1, 12, "price_asc")
	require.NoError(t, err)
	require.Len(t, result.Favorites, 3)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, "鼠标垫", result.Favorites[0].Name)

	// 下架商品保留在收藏里，但标记为不可售
	for _, f := range result.Favorites {
		if f.ProductID == off.ID {
			assert.Equal(t, "discontinued", f.Status)
		} else {
			assert.Equal(t, "available", f.Status)
		}
	}
}

func TestBatchRemoveFavorites(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)
	p1 := seedProduct(t, db, model.Product{Name: "键盘", Price: 299, Stock: 10})
	p2 := seedProduct(t, db, model.Product{Name: "鼠标", Price: 99, Stock: 10})

	f1, err := s.AddFavorite(1, p1.ID)
	require.NoError(t, err)
	f2, err := s.AddFavorite(1, p2.ID)
	require.NoError(t, err)

	// 只能删自己的收藏
	removed, err := s.BatchRemoveFavorites(2, []int64{f1.ID, f2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	removed, err = s.BatchRemoveFavorites(1, []int64{f1.ID, f2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
