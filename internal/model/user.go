package model

import "time"

// User 用户表
// status: 1 正常 0 已禁用/注销
type User struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash  string     `gorm:"type:varchar(255);not null" json:"-"`
	Nickname      string     `gorm:"type:varchar(255)" json:"nickname"`
	Email         string     `gorm:"type:varchar(100)" json:"email"`
	Phone         string     `gorm:"type:varchar(20)" json:"phone"`
	Avatar        string     `gorm:"type:mediumtext" json:"avatar"`
	Gender        int        `gorm:"type:tinyint;default:0" json:"gender"`
	Birthday      string     `gorm:"type:varchar(20)" json:"birthday"`
	Level         int        `gorm:"type:int;default:1" json:"level"`
	Points        int64      `gorm:"type:bigint;default:0" json:"points"`
	Balance       float64    `gorm:"type:decimal(10,2);default:0" json:"balance"`
	Status        int        `gorm:"type:tinyint;default:1" json:"status"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `gorm:"type:varchar(50)" json:"last_login_ip"`
	LoginCount    int64      `gorm:"type:bigint;default:0" json:"login_count"`
	RememberToken string     `gorm:"type:varchar(100)" json:"-"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	PhoneVerified bool       `gorm:"default:false" json:"phone_verified"`
	AgreeTerms    bool       `gorm:"default:true" json:"agree_terms"`
	AgreePrivacy  bool       `gorm:"default:true" json:"agree_privacy"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LoginLog 登录日志表，写入失败不影响登录主流程
type LoginLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     *int64    `gorm:"index" json:"user_id"` // 用户不存在时为空
	LoginIP    string    `gorm:"type:varchar(50)" json:"login_ip"`
	UserAgent  string    `gorm:"type:varchar(500)" json:"user_agent"`
	Device     string    `gorm:"type:varchar(100)" json:"device"`
	Location   string    `gorm:"type:varchar(100)" json:"location"`
	IsSuccess  bool      `json:"is_success"`
	FailReason string    `gorm:"type:varchar(255)" json:"fail_reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// Favorite 用户收藏，一个用户对同一商品只有一行
type Favorite struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index;uniqueIndex:uni_user_product" json:"user_id"`
	ProductID int64     `gorm:"uniqueIndex:uni_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Address 收货地址
// status: 1 有效 0 已删除（软删除）
type Address struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"index" json:"user_id"`
	ReceiverName  string    `gorm:"type:varchar(50)" json:"receiver_name"`
	ReceiverPhone string    `gorm:"type:varchar(20)" json:"receiver_phone"`
	Province      string    `gorm:"type:varchar(50)" json:"province"`
	City          string    `gorm:"type:varchar(50)" json:"city"`
	District      string    `gorm:"type:varchar(50)" json:"district"`
	DetailAddress string    `gorm:"type:varchar(255)" json:"detail_address"`
	PostalCode    string    `gorm:"type:varchar(10)" json:"postal_code"`
	AddressTag    string    `gorm:"type:varchar(20)" json:"address_tag"`
	IsDefault     bool      `gorm:"default:false" json:"is_default"`
	Status        int       `gorm:"type:tinyint;default:1" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (LoginLog) TableName() string {
	return "user_login_logs"
}

func (Favorite) TableName() string {
	return "user_favorites"
}

func (Address) TableName() string {
	return "user_addresses"
}
