package model

import "time"

// Product 商品表
// status: 1 在售 0 下架
type Product struct {
	ID               int64     `gorm:"primaryKey"`
	Name             string    `gorm:"type:varchar(100);not null"`
	Subtitle         string    `gorm:"type:varchar(255)"`
	CategoryID       int64     `gorm:"index"`
	Price            float64   `gorm:"type:decimal(10,2)"`
	OriginalPrice    float64   `gorm:"type:decimal(10,2)"`
	Stock            int       `gorm:"not null;default:0"`
	SalesCount       int64     `gorm:"type:bigint;default:0"`
	RatingAvg        float64   `gorm:"type:decimal(3,2);default:5"`
	ReviewCount      int64     `gorm:"type:bigint;default:0"`
	Description      string    `gorm:"type:text"`
	DetailHTML       string    `gorm:"type:mediumtext;column:detail_html"`
	DetailMobileHTML string    `gorm:"type:mediumtext;column:detail_mobile_html"`
	MainImage        string    `gorm:"type:varchar(255)"`
	Keywords         string    `gorm:"type:varchar(255)"`
	Tags             string    `gorm:"type:varchar(255)"`
	Attributes       string    `gorm:"type:text"` // JSON 键值对
	ServiceGuarantee string    `gorm:"type:varchar(500)"`
	IsHot            bool      `gorm:"default:false"`
	IsNew            bool      `gorm:"default:false"`
	IsRecommend      bool      `gorm:"default:false"`
	Status           int       `gorm:"type:tinyint;default:1;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Category 商品分类
type Category struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(50);not null"`
	ParentID  int64  `gorm:"default:0"`
	Level     int    `gorm:"type:tinyint;default:1"`
	SortOrder int    `gorm:"default:0"`
	Status    int    `gorm:"type:tinyint;default:1"`
	CreatedAt time.Time
}

// ProductImage 商品图片
type ProductImage struct {
	ID        int64  `gorm:"primaryKey"`
	ProductID int64  `gorm:"index"`
	ImageURL  string `gorm:"type:varchar(255)"`
	IsMain    bool   `gorm:"default:false"`
	SortOrder int    `gorm:"default:0"`
}

// SpecName 规格名，如 颜色/尺寸
type SpecName struct {
	ID        int64  `gorm:"primaryKey"`
	ProductID int64  `gorm:"index"`
	SpecName  string `gorm:"type:varchar(50)"`
	SortOrder int    `gorm:"default:0"`
}

// SpecValue 规格值，挂在规格名下
type SpecValue struct {
	ID         int64  `gorm:"primaryKey"`
	SpecNameID int64  `gorm:"index"`
	SpecValue  string `gorm:"type:varchar(50)"`
	SortOrder  int    `gorm:"default:0"`
}

// Review 商品评价
type Review struct {
	ID           int64  `gorm:"primaryKey"`
	ProductID    int64  `gorm:"index"`
	UserID       int64  `gorm:"index"`
	OrderID      *int64 `gorm:"index"`
	OrderItemID  *int64
	SkuID        *int64
	Rating       int    `gorm:"type:tinyint;default:5"`
	Content      string `gorm:"type:text"`
	Images       string `gorm:"type:varchar(2000)"` // 逗号分隔的图片地址
	IsAnonymous  bool   `gorm:"default:false"`
	IsAdditional bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Product) TableName() string {
	return "products"
}

func (Category) TableName() string {
	return "categories"
}

func (ProductImage) TableName() string {
	return "product_images"
}

func (SpecName) TableName() string {
	return "product_spec_names"
}

func (SpecValue) TableName() string {
	return "product_spec_values"
}

func (Review) TableName() string {
	return "product_reviews"
}
