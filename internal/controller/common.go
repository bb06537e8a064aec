package controller

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// fail 统一错误出口
// 业务错误按其携带的状态码返回，基础设施错误隐藏细节只回 500
func fail(ctx *gin.Context, err error) {
	var bizErr *service.Error
	if errors.As(err, &bizErr) {
		response.Error(ctx, bizErr.Status, bizErr.Message)
		return
	}
	log.Printf("%s %s 内部错误: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	response.Error(ctx, http.StatusInternalServerError, "服务器内部错误")
}

func currentUserID(ctx *gin.Context) int64 {
	if v, ok := ctx.Get("userId"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(ctx, http.StatusBadRequest, "参数格式不正确")
		return 0, false
	}
	return id, true
}

func queryInt(ctx *gin.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func queryInt64(ctx *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(ctx.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
