// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeSignatureInvalid ErrorCode = "2001"
	CodeSignatureExpired ErrorCode = "2002"
	CodeSignatureMissing ErrorCode = "2003"
	CodeKeyNotGranted    ErrorCode = "2004"

	// 资源错误 (3xxx)
	CodeKnowledgeBaseNotFound ErrorCode = "3001"
	CodeDataSourceNotFound    ErrorCode = "3002"
	CodeStackNotFound         ErrorCode = "3003"
	CodeJobNotFound           ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeRetrievalFailed  ErrorCode = "4001"
	CodeIngestionFailed  ErrorCode = "4002"
	CodeDeploymentFailed ErrorCode = "4003"
	CodeEmbeddingFailed  ErrorCode = "4004"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeVectorDBError ErrorCode = "5003"
	CodeStorageError  ErrorCode = "5004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeSignatureInvalid, CodeSignatureExpired, CodeSignatureMissing:
		return http.StatusUnauthorized
	case CodeForbidden, CodeKeyNotGranted:
		return http.StatusForbidden
	case CodeNotFound, CodeKnowledgeBaseNotFound, CodeDataSourceNotFound, CodeStackNotFound, CodeJobNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeRetrievalFailed, CodeEmbeddingFailed, CodeVectorDBError:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrKnowledgeBaseNotFound = New(CodeKnowledgeBaseNotFound, "knowledge base not found")
	ErrDataSourceNotFound    = New(CodeDataSourceNotFound, "data source not found")
	ErrStackNotFound         = New(CodeStackNotFound, "deployment stack not found")
	ErrJobNotFound           = New(CodeJobNotFound, "ingestion job not found")

	ErrRetrievalFailed  = New(CodeRetrievalFailed, "retrieval failed")
	ErrIngestionFailed  = New(CodeIngestionFailed, "ingestion failed")
	ErrDeploymentFailed = New(CodeDeploymentFailed, "deployment failed")
	ErrEmbeddingFailed  = New(CodeEmbeddingFailed, "embedding failed")
)

// IsAppError 检查错误链上是否存在 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 提取错误链上的 AppError，不存在时按未知错误包装
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
