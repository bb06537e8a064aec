package controller

import (
	"net/http"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserController 用户相关接口：注册登录、资料、收藏、地址
type UserController struct {
	users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

type registerRequest struct {
	service.RegisterInput
	ConfirmPassword string `json:"confirmPassword"`
}

// Register POST /api/auth/register
func (c *UserController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		response.Error(ctx, http.StatusBadRequest, "两次输入的密码不一致")
		return
	}

	u, err := c.users.Register(req.RegisterInput)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Created(ctx, "注册成功", gin.H{"user": u})
}

// Login POST /api/auth/login
func (c *UserController) Login(ctx *gin.Context) {
	var req service.LoginInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	result, err := c.users.Login(req, ctx.ClientIP(), ctx.GetHeader("User-Agent"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "登录成功", result)
}

// Logout POST /api/auth/logout
func (c *UserController) Logout(ctx *gin.Context) {
	token := ctx.GetString("token")
	if err := c.users.Logout(ctx.Request.Context(), token); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "退出登录成功", nil)
}

// CheckUsername GET /api/auth/check-username/:username
func (c *UserController) CheckUsername(ctx *gin.Context) {
	result, err := c.users.CheckUsername(ctx.Param("username"))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "检查完成", result)
}

// Verify GET /api/auth/verify
// Token 有效则返回当前用户
func (c *UserController) Verify(ctx *gin.Context) {
	u, err := c.users.GetUser(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "Token有效", gin.H{"user": u})
}

// Profile GET /api/user/profile
func (c *UserController) Profile(ctx *gin.Context) {
	u, err := c.users.GetUser(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取用户信息成功", gin.H{"user": u})
}

// UpdateProfile PUT /api/user/profile
// 只透传白名单字段，用户名、密码、状态等不允许从这里改
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.UpdateProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	u, err := c.users.UpdateProfile(currentUserID(ctx), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "更新成功", gin.H{"user": u})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword PUT /api/user/password
func (c *UserController) ChangePassword(ctx *gin.Context) {
	var req changePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	if err := c.users.ChangePassword(currentUserID(ctx), req.OldPassword, req.NewPassword); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "密码修改成功", nil)
}

type uploadAvatarRequest struct {
	Avatar string `json:"avatar"`
}

// UploadAvatar POST /api/user/avatar
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	var req uploadAvatarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	u, err := c.users.UploadAvatar(currentUserID(ctx), req.Avatar)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "头像上传成功", gin.H{"user": u})
}

// Stats GET /api/user/stats
func (c *UserController) Stats(ctx *gin.Context) {
	stats, err := c.users.GetStats(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取统计信息成功", stats)
}

// ListFavorites GET /api/user/favorites
func (c *UserController) ListFavorites(ctx *gin.Context) {
	result, err := c.users.ListFavorites(
		currentUserID(ctx),
		queryInt(ctx, "page", 1),
		queryInt(ctx, "pageSize", 12),
		ctx.Query("sort"),
	)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取收藏列表成功", result)
}

type addFavoriteRequest struct {
	ProductID int64 `json:"productId"`
}

// AddFavorite POST /api/user/favorites
func (c *UserController) AddFavorite(ctx *gin.Context) {
	var req addFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	result, err := c.users.AddFavorite(currentUserID(ctx), req.ProductID)
	if err != nil {
		fail(ctx, err)
		return
	}
	if result.Created {
		response.Created(ctx, "收藏成功", result)
		return
	}
	response.OK(ctx, "已收藏过该商品", result)
}

// RemoveFavorite DELETE /api/user/favorites/:id
func (c *UserController) RemoveFavorite(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.users.RemoveFavorite(currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "取消收藏成功", nil)
}

type batchRemoveRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchRemoveFavorites DELETE /api/user/favorites
func (c *UserController) BatchRemoveFavorites(ctx *gin.Context) {
	var req batchRemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	removed, err := c.users.BatchRemoveFavorites(currentUserID(ctx), req.IDs)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "批量取消收藏成功", gin.H{"removed": removed})
}

// ListAddresses GET /api/user/addresses
func (c *UserController) ListAddresses(ctx *gin.Context) {
	addrs, err := c.users.ListAddresses(currentUserID(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "获取地址列表成功", gin.H{"addresses": addrs})
}

// CreateAddress POST /api/user/addresses
func (c *UserController) CreateAddress(ctx *gin.Context) {
	var req service.AddressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	addr, err := c.users.CreateAddress(currentUserID(ctx), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.Created(ctx, "新增地址成功", gin.H{"address": addr})
}

// UpdateAddress PUT /api/user/addresses/:id
func (c *UserController) UpdateAddress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateAddressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "请求参数格式不正确")
		return
	}

	addr, err := c.users.UpdateAddress(currentUserID(ctx), id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "更新地址成功", gin.H{"address": addr})
}

// DeleteAddress DELETE /api/user/addresses/:id
func (c *UserController) DeleteAddress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.users.DeleteAddress(currentUserID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	response.OK(ctx, "删除地址成功", nil)
}
