package service

import "net/http"

// Error 业务错误，带上应该返回的 HTTP 状态码
// 基础设施类错误（数据库等）不用它，直接向上抛原始 error，由控制器兜底为 500
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func badRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func notFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}
