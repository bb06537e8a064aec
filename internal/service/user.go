package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/RCodeTree/market-service/internal/model"
	"github.com/RCodeTree/market-service/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// 校验规则与前端约定保持一致
var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	phoneRe    = regexp.MustCompile(`^1[3-9]\d{9}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// TokenBlacklistKey 登出后的 Token 在 Redis 黑名单里的键
func TokenBlacklistKey(token string) string {
	return "auth:blacklist:" + token
}

// UserService 用户业务逻辑：注册登录、资料、收藏、地址
type UserService struct {
	db  *gorm.DB
	rdb *redis.Client // 可为 nil，此时登出黑名单退化为空操作
}

func NewUserService(db *gorm.DB, rdb *redis.Client) *UserService {
	return &UserService{db: db, rdb: rdb}
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Register 用户注册
func (s *UserService) Register(in RegisterInput) (*model.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, badRequest("用户名和密码不能为空")
	}
	if !usernameRe.MatchString(in.Username) {
		return nil, badRequest("用户名只能包含字母、数字和下划线，长度3-20位")
	}
	if len(in.Password) < 6 || len(in.Password) > 20 {
		return nil, badRequest("密码长度必须在6-20位之间")
	}
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		return nil, badRequest("邮箱格式不正确")
	}
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		return nil, badRequest("手机号格式不正确")
	}

	var cnt int64
	if err := s.db.Model(&model.User{}).Where("username = ?", in.Username).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, badRequest("用户名已存在")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := model.User{
		Username:     in.Username,
		PasswordHash: string(hashed),
		Nickname:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		Status:       1,
		Level:        1,
		AgreeTerms:   true,
		AgreePrivacy: true,
	}

	if err := s.db.Create(&u).Error; err != nil {
		// 并发注册同名时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return nil, badRequest("用户名已存在")
		}
		return nil, err
	}

	return &u, nil
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
	ExpiresIn string      `json:"expiresIn"`
}

// Login 用户登录
// 成功和失败都会尽力写一条登录日志，日志失败不影响登录
func (s *UserService) Login(in LoginInput, clientIP, userAgent string) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, badRequest("用户名和密码不能为空")
	}

	var u model.User
	if err := s.db.Where("username = ?", in.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logLoginAttempt(nil, clientIP, userAgent, false, "用户不存在")
			return nil, unauthorized("用户名或密码错误")
		}
		return nil, err
	}

	if u.Status == 0 {
		s.logLoginAttempt(&u.ID, clientIP, userAgent, false, "账户已禁用")
		return nil, unauthorized("账户已被禁用")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		s.logLoginAttempt(&u.ID, clientIP, userAgent, false, "密码错误")
		return nil, unauthorized("用户名或密码错误")
	}

	token, _, err := jwt.GenerateToken(u.ID, u.Username, in.Remember)
	if err != nil {
		return nil, err
	}

	rememberToken := ""
	if in.Remember {
		rememberToken = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_login_time": now,
		"last_login_ip":   clientIP,
		"login_count":     gorm.Expr("login_count + 1"),
		"remember_token":  rememberToken,
	}
	if err := s.db.Model(&u).Updates(updates).Error; err != nil {
		return nil, err
	}
	u.LastLoginTime = &now
	u.LastLoginIP = clientIP
	u.LoginCount++

	s.logLoginAttempt(&u.ID, clientIP, userAgent, true, "")

	expiresIn := "24小时"
	if in.Remember {
		expiresIn = "30天"
	}
	return &LoginResult{Token: token, User: &u, ExpiresIn: expiresIn}, nil
}

// logLoginAttempt 记录登录日志，失败只打日志
func (s *UserService) logLoginAttempt(userID *int64, clientIP, userAgent string, success bool, failReason string) {
	logRow := model.LoginLog{
		UserID:     userID,
		LoginIP:    clientIP,
		UserAgent:  userAgent,
		IsSuccess:  success,
		FailReason: failReason,
	}
	if err := s.db.Create(&logRow).Error; err != nil {
		log.Printf("记录登录日志失败: %v", err)
	}
}

// Logout 登出：把 Token 放进 Redis 黑名单直到它自然过期
func (s *UserService) Logout(ctx context.Context, token string) error {
	if s.rdb == nil || token == "" {
		return nil
	}
	claims, err := jwt.ParseToken(token)
	if err != nil {
		// Token 已经无效，无需拉黑
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, TokenBlacklistKey(token), "1", ttl).Err(); err != nil {
		log.Printf("写入 Token 黑名单失败: %v", err)
	}
	return nil
}

// GetUser 获取用户信息
func (s *UserService) GetUser(userID int64) (*model.User, error) {
	var u model.User
	if err := s.db.Where("id = ? AND status != 0", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("用户不存在")
		}
		return nil, err
	}
	return &u, nil
}

type UpdateProfileInput struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Avatar   *string `json:"avatar"`
	Gender   *int    `json:"gender"`
	Birthday *string `json:"birthday"`
}

// UpdateProfile 更新用户信息，只接受白名单字段
func (s *UserService) UpdateProfile(userID int64, in UpdateProfileInput) (*model.User, error) {
	if in.Email != nil && *in.Email != "" && !emailRe.MatchString(*in.Email) {
		return nil, badRequest("邮箱格式不正确")
	}
	if in.Phone != nil && *in.Phone != "" && !phoneRe.MatchString(*in.Phone) {
		return nil, badRequest("手机号格式不正确")
	}

	updates := map[string]interface{}{}
	if in.Nickname != nil {
		updates["nickname"] = *in.Nickname
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Avatar != nil {
		updates["avatar"] = *in.Avatar
	}
	if in.Gender != nil {
		updates["gender"] = *in.Gender
	}
	if in.Birthday != nil {
		updates["birthday"] = *in.Birthday
	}
	if len(updates) == 0 {
		return nil, badRequest("没有可更新的字段")
	}

	if err := s.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return badRequest("旧密码和新密码不能为空")
	}
	if len(newPassword) < 6 || len(newPassword) > 20 {
		return badRequest("新密码长度必须在6-20位之间")
	}

	u, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return badRequest("旧密码错误")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	return s.db.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", string(hashed)).Error
}

type UsernameCheck struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// CheckUsername 检查用户名是否可用
func (s *UserService) CheckUsername(username string) (*UsernameCheck, error) {
	if username == "" {
		return nil, badRequest("用户名不能为空")
	}
	if !usernameRe.MatchString(username) {
		return nil, badRequest("用户名只能包含字母、数字和下划线，长度3-20位")
	}

	var cnt int64
	if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return &UsernameCheck{Available: false, Message: "用户名已存在"}, nil
	}
	return &UsernameCheck{Available: true, Message: "用户名可用"}, nil
}

// UploadAvatar 保存头像 data URL
func (s *UserService) UploadAvatar(userID int64, dataURL string) (*model.User, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, badRequest("头像格式不正确")
	}
	if err := s.db.Model(&model.User{}).Where("id = ?", userID).Update("avatar", dataURL).Error; err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}

type UserStats struct {
	OrderCount    int64 `json:"orderCount"`
	FavoriteCount int64 `json:"favoriteCount"`
}

// GetStats 用户中心的统计数字
func (s *UserService) GetStats(userID int64) (*UserStats, error) {
	var stats UserStats
	if err := s.db.Model(&model.Order{}).Where("user_id = ?", userID).Count(&stats.OrderCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&stats.FavoriteCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
