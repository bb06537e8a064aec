package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
// 所有接口都返回这个信封，前端按 success/code 判断结果
type Response struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`           // 业务码
	Message   string      `json:"message"`        // 提示信息
	Data      interface{} `json:"data,omitempty"` // 数据
	Timestamp string      `json:"timestamp"`      // ISO8601 时间戳
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// OK 成功响应 (HTTP 200)
func OK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Success:   true,
		Code:      http.StatusOK,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// Created 创建成功响应 (HTTP 201)
func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, Response{
		Success:   true,
		Code:      http.StatusCreated,
		Message:   message,
		Data:      data,
		Timestamp: now(),
	})
}

// Error 失败响应
func Error(ctx *gin.Context, httpStatus int, message string) {
	ctx.JSON(httpStatus, Response{
		Success:   false,
		Code:      httpStatus, // 这里简单将 HTTP 状态码作为业务码
		Message:   message,
		Timestamp: now(),
	})
}
