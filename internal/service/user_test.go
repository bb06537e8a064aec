package service

import (
	"testing"

	"github.com/RCodeTree/market-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	u, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", u.Username)
	assert.Equal(t, "zhangsan", u.Nickname)
	assert.Equal(t, 1, u.Status)

	// 明文不落库
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"空用户名", RegisterInput{Password: "secret123"}, "用户名和密码不能为空"},
		{"非法用户名", RegisterInput{Username: "ab", Password: "secret123"}, "用户名只能包含字母、数字和下划线，长度3-20位"},
		{"密码过短", RegisterInput{Username: "zhangsan", Password: "123"}, "密码长度必须在6-20位之间"},
		{"邮箱格式", RegisterInput{Username: "zhangsan", Password: "secret123", Email: "not-an-email"}, "邮箱格式不正确"},
		{"手机号格式", RegisterInput{Username: "zhangsan", Password: "secret123", Phone: "12345"}, "手机号格式不正确"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(tc.in)
			require.Error(t, err)
			var bizErr *Error
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, tc.msg, bizErr.Message)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	_, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Username: "zhangsan", Password: "another123"})
	require.Error(t, err)
	assert.EqualError(t, err, "用户名已存在")

	var cnt int64
	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "zhangsan").Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	_, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	result, err := s.Login(LoginInput{Username: "zhangsan", Password: "secret123"}, "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "24小时", result.ExpiresIn)
	assert.Equal(t, int64(1), result.User.LoginCount)
	assert.NotNil(t, result.User.LastLoginTime)

	// 登录日志落库
	var logs []model.LoginLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].IsSuccess)
}

func TestLoginRemember(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	_, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	result, err := s.Login(LoginInput{Username: "zhangsan", Password: "secret123", Remember: true}, "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.Equal(t, "30天", result.ExpiresIn)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	_, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	_, err = s.Login(LoginInput{Username: "zhangsan", Password: "wrong1234"}, "127.0.0.1", "go-test")
	require.Error(t, err)
	var bizErr *Error
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, 401, bizErr.Status)
	assert.Equal(t, "用户名或密码错误", bizErr.Message)

	var logs []model.LoginLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].IsSuccess)
	assert.Equal(t, "密码错误", logs[0].FailReason)
}

func TestLoginDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	u, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", u.ID).Update("status", 0).Error)

	_, err = s.Login(LoginInput{Username: "zhangsan", Password: "secret123"}, "127.0.0.1", "go-test")
	require.Error(t, err)
	assert.EqualError(t, err, "账户已被禁用")
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	u, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	err = s.ChangePassword(u.ID, "wrong1234", "newsecret1")
	require.Error(t, err)
	assert.EqualError(t, err, "旧密码错误")

	require.NoError(t, s.ChangePassword(u.ID, "secret123", "newsecret1"))

	_, err = s.Login(LoginInput{Username: "zhangsan", Password: "newsecret1"}, "127.0.0.1", "go-test")
	require.NoError(t, err)
}

func TestCheckUsername(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	result, err := s.CheckUsername("zhangsan")
	require.NoError(t, err)
	assert.True(t, result.Available)

	_, err = s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	result, err = s.CheckUsername("zhangsan")
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Equal(t, "用户名已存在", result.Message)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	u, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	nickname := "三哥"
	updated, err := s.UpdateProfile(u.ID, UpdateProfileInput{Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, "三哥", updated.Nickname)

	_, err = s.UpdateProfile(u.ID, UpdateProfileInput{})
	require.Error(t, err)
	assert.EqualError(t, err, "没有可更新的字段")

	badEmail := "nope"
	_, err = s.UpdateProfile(u.ID, UpdateProfileInput{Email: &badEmail})
	require.Error(t, err)
	assert.EqualError(t, err, "邮箱格式不正确")
}

func TestUploadAvatar(t *testing.T) {
	db := newTestDB(t)
	s := NewUserService(db, nil)

	u, err := s.Register(RegisterInput{Username: "zhangsan", Password: "secret123"})
	require.NoError(t, err)

	_, err = s.UploadAvatar(u.ID, "http://example.com/a.png")
	require.Error(t, err)
	assert.EqualError(t, err, "头像格式不正确")

	updated, err := s.UploadAvatar(u.ID, "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Contains(t, updated.Avatar, "data:image/png")
}
