// Package signer 提供请求签名与校验功能
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpiredSignature = errors.New("signature expired")
)

// DateLayout 签名时间戳格式
const DateLayout = "20060102T150405Z"

// Signer 基于 HMAC-SHA256 的请求签名器。
// 待签串为 method|path|date|sha256(body)，各段以换行连接。
type Signer struct {
	skew time.Duration
}

// New 创建签名器，skew 为允许的时钟偏移窗口
func New(skew time.Duration) *Signer {
	if skew <= 0 {
		skew = 5 * time.Minute
	}
	return &Signer{skew: skew}
}

// StringToSign 构建待签字符串
func StringToSign(method, path, date string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	return strings.Join([]string{
		strings.ToUpper(method),
		path,
		date,
		hex.EncodeToString(bodyHash[:]),
	}, "\n")
}

// Sign 计算请求签名
func (s *Signer) Sign(secret, method, path string, at time.Time, body []byte) string {
	date := at.UTC().Format(DateLayout)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(StringToSign(method, path, date, body)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify 校验请求签名；date 为请求携带的时间戳头
func (s *Signer) Verify(secret, method, path, date, signature string, now time.Time, body []byte) error {
	at, err := time.Parse(DateLayout, date)
	if err != nil {
		return ErrInvalidSignature
	}

	diff := now.Sub(at)
	if diff < 0 {
		diff = -diff
	}
	if diff > s.skew {
		return ErrExpiredSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(StringToSign(method, path, date, body)))
	want := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(want), []byte(signature)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
