// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"praxis-advisor-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Fail 返回统一格式的错误响应
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:      true,
		Message:    message,
		StatusCode: statusCode,
	})
}

// FailWithError 按 AppError 的错误码映射 HTTP 状态码后返回错误响应
func FailWithError(c *gin.Context, appErr *errors.AppError) {
	Fail(c, appErr.HTTPStatus, appErr.Message)
}

