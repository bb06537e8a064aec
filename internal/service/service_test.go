package service

import (
	"fmt"
	"testing"

	"github.com/RCodeTree/market-service/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存 SQLite
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.LoginLog{},
		&model.Favorite{},
		&model.Address{},
		&model.Product{},
		&model.Category{},
		&model.ProductImage{},
		&model.SpecName{},
		&model.SpecValue{},
		&model.Review{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusLog{},
	)
	require.NoError(t, err)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p model.Product) model.Product {
	t.Helper()
	if p.Status == 0 {
		p.Status = 1
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
