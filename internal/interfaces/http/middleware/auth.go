// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"city-events-api/internal/domain/repository"
	"city-events-api/pkg/errors"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/signer"
)

const (
	// APIKeyHeader 调用方 API Key 头
	APIKeyHeader = "X-Api-Key"
	// SignatureHeader 请求签名头
	SignatureHeader = "X-Signature"
	// SignatureDateHeader 签名时间戳头
	SignatureDateHeader = "X-Signature-Date"
)

// SignatureAuthConfig 签名认证配置
type SignatureAuthConfig struct {
	// Enabled 是否启用签名校验
	Enabled bool
	// ClockSkew 允许的时钟偏移窗口
	ClockSkew time.Duration
	// SkipPaths 跳过认证的路径
	SkipPaths []string
}

// SignatureAuth 请求签名认证中间件
// 调用方必须持有已授权的 API Key，并对 method|path|date|body 做 HMAC-SHA256 签名
func SignatureAuth(cfg SignatureAuthConfig, grants repository.GrantRepository) gin.HandlerFunc {
	s := signer.New(cfg.ClockSkew)

	// 构建跳过路径映射
	skipMap := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		// 如果未启用认证，直接放行
		if !cfg.Enabled {
			c.Next()
			return
		}

		// 检查是否跳过路径（支持前缀匹配）
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}
		for path := range skipMap {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		ctx := c.Request.Context()

		apiKey := c.GetHeader(APIKeyHeader)
		signature := c.GetHeader(SignatureHeader)
		date := c.GetHeader(SignatureDateHeader)
		if apiKey == "" || signature == "" || date == "" {
			abortWithCode(c, http.StatusUnauthorized, errors.CodeSignatureMissing, "missing signature headers")
			return
		}

		grant, err := grants.GetByAPIKey(ctx, apiKey)
		if err != nil {
			abortWithCode(c, http.StatusForbidden, errors.CodeKeyNotGranted, "api key not granted")
			return
		}
		if !grant.Usable() {
			abortWithCode(c, http.StatusForbidden, errors.CodeKeyNotGranted, "api key revoked")
			return
		}

		// 读取并还原请求体以参与签名
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithCode(c, http.StatusUnauthorized, errors.CodeSignatureInvalid, "unreadable request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := s.Verify(grant.Secret, c.Request.Method, c.Request.URL.Path, date, signature, time.Now(), body); err != nil {
			code := errors.CodeSignatureInvalid
			msg := "invalid signature"
			if err == signer.ErrExpiredSignature {
				code = errors.CodeSignatureExpired
				msg = "signature expired"
			}
			logger.Warn(ctx, "request signature rejected", "api_key", apiKey, "reason", msg)
			abortWithCode(c, http.StatusUnauthorized, code, msg)
			return
		}

		// 注入调用方身份
		c.Set("api_key", apiKey)
		c.Set("grant_name", grant.Name)

		c.Next()
	}
}

func abortWithCode(c *gin.Context, httpCode int, code errors.ErrorCode, message string) {
	c.AbortWithStatusJSON(httpCode, gin.H{
		"code":       httpCode,
		"message":    message,
		"error_code": string(code),
		"trace_id":   c.GetString("trace_id"),
	})
}
